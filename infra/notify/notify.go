// Package notify publishes scheduling progress over MQTT so external
// dashboards can follow a long plan run day by day.
package notify

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
)

// Config defines the connection parameters for the progress publisher.
type Config struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// DayStatus is the JSON payload published for every pipeline transition and
// day outcome.
type DayStatus struct {
	RunID     string `json:"run_id"`
	Date      string `json:"date"`
	Stage     string `json:"stage"`
	Attempt   int    `json:"attempt"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Notifier publishes day status updates.
type Notifier interface {
	DayStatus(ev DayStatus) error
	Close()
}

// NopNotifier discards all updates.
type NopNotifier struct{}

func (NopNotifier) DayStatus(DayStatus) error { return nil }
func (NopNotifier) Close()                    {}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// MQTTNotifier publishes day status updates to a single MQTT topic using
// Eclipse Paho.
type MQTTNotifier struct {
	cli   pahoClient
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTNotifier connects to the broker. A missing client id gets a random
// one so parallel runs do not evict each other's sessions.
func NewMQTTNotifier(cfg Config) (*MQTTNotifier, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "scheduler-" + uuid.NewString()[:8]
	}
	topic := cfg.Topic
	if topic == "" {
		topic = "scheduler/progress"
	}
	log := logger.New("notify")

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected, publishing to %s", topic)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTNotifier{cli: c, topic: topic, qos: cfg.QoS, log: log}, nil
}

// DayStatus publishes the update as JSON.
func (n *MQTTNotifier) DayStatus(ev DayStatus) error {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := n.cli.Publish(n.topic, n.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		n.log.Errorf("publish failed: %v", err)
		return err
	}
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.cli.Disconnect(250)
}
