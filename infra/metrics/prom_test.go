package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

func TestPromSink_RecordDayResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ev := coremetrics.DayResultEvent{
		Status:       model.StatusSuccess,
		Improved:     true,
		SavedMinutes: 60,
		Elapsed:      time.Second,
	}
	if err := sink.RecordDayResult(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	ps := sink.(*PromSink)
	if got := testutil.ToFloat64(ps.days.WithLabelValues("success")); got != 1 {
		t.Errorf("days counter = %v, want 1", got)
	}
}

func TestPromSink_RecordSolveOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	ps := sink.(*PromSink)
	_ = ps.RecordSolve(coremetrics.SolveEvent{Stage: "individual_schedule"})
	_ = ps.RecordSolve(coremetrics.SolveEvent{Stage: "individual_schedule", Error: "infeasible"})
	if got := testutil.ToFloat64(ps.solves.WithLabelValues("individual_schedule", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ps.solves.WithLabelValues("individual_schedule", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestPromSink_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// Re-registering on the same registry reuses the existing collectors.
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
