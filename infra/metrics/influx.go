package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.SchedulerSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDayResult writes the day outcome as a line protocol point.
func (s *InfluxSink) RecordDayResult(ev coremetrics.DayResultEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_day_result").
		AddTag("date", ev.Date.Format("2006-01-02")).
		AddTag("status", ev.Status.String()).
		AddTag("strategy", ev.Strategy).
		AddTag("component", "planner").
		AddField("applicants", ev.Applicants).
		AddField("scheduled", ev.Scheduled).
		AddField("backtracks", ev.Backtracks).
		AddField("saved_minutes", ev.SavedMinutes).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSolve writes one pipeline stage attempt.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_solve_attempt").
		AddTag("date", ev.Date.Format("2006-01-02")).
		AddTag("stage", ev.Stage).
		AddTag("attempt", strconv.Itoa(ev.Attempt)).
		AddTag("component", "dayrun").
		AddField("filler_hint", ev.FillerHint).
		AddField("errors", ev.Error).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStayStats writes per-day stay time summaries.
func (s *InfluxSink) RecordStayStats(ev coremetrics.StayStatsEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_stay_stats").
		AddTag("date", ev.Date.Format("2006-01-02")).
		AddTag("component", "postopt").
		AddField("mean_stay", round3(ev.MeanStay)).
		AddField("max_stay", ev.MaxStay).
		AddField("outliers", ev.Outliers).
		AddField("applicants", ev.Applicants).
		SetTime(ev.Date)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
