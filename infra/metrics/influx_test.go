package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

func TestInfluxSink_RecordDayResult(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	date := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	ev := coremetrics.DayResultEvent{
		Date:         date,
		Status:       model.StatusSuccess,
		Applicants:   23,
		Scheduled:    23,
		Backtracks:   1,
		Strategy:     "heuristic",
		Improved:     true,
		SavedMinutes: 90,
		Elapsed:      1500 * time.Millisecond,
	}

	if err := sink.RecordDayResult(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("schedule_day_result").
		AddTag("date", "2025-07-01").
		AddTag("status", "success").
		AddTag("strategy", "heuristic").
		AddTag("component", "planner").
		AddField("applicants", 23).
		AddField("scheduled", 23).
		AddField("backtracks", 1).
		AddField("saved_minutes", 90).
		AddField("elapsed_ms", 1500.0).
		SetTime(date)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", body, expected)
	}
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	ev := coremetrics.SolveEvent{
		Date:       time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		Stage:      "batched_schedule",
		Attempt:    2,
		FillerHint: 3,
		Error:      "no room available",
		Elapsed:    20 * time.Millisecond,
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(bodies) != 1 {
		t.Fatalf("expected 1 write, got %d", len(bodies))
	}
	if !strings.Contains(bodies[0], "schedule_solve_attempt") ||
		!strings.Contains(bodies[0], "stage=batched_schedule") {
		t.Errorf("unexpected body: %s", bodies[0])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
