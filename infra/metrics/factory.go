package metrics

import (
	"github.com/jayquinn/interview-scheduler-sub001/core/factory"
	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in scheduler sinks.
func init() {
	_ = coremetrics.RegisterSchedulerSink("nop", func(map[string]any) (coremetrics.SchedulerSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSchedulerSink("memory", func(map[string]any) (coremetrics.SchedulerSink, error) {
		return coremetrics.NewMemorySink(), nil
	})

	_ = coremetrics.RegisterSchedulerSink("prometheus", func(conf map[string]any) (coremetrics.SchedulerSink, error) {
		var c struct {
			Port string `json:"prometheus_port"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		// Port is used by the HTTP server only; PromSink itself doesn't need it.
		return NewPromSinkWithRegistry(coremetrics.Config{}, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSchedulerSink("influx", func(conf map[string]any) (coremetrics.SchedulerSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
