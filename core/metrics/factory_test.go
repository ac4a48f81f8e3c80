package metrics_test

import (
	"testing"

	"github.com/jayquinn/interview-scheduler-sub001/core/factory"
	metrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	_ "github.com/jayquinn/interview-scheduler-sub001/infra/metrics"
)

/*
TestSinkFactory_Builtins verifies registration via infra/metrics/factory.go.

	Cases:
	- instantiate builtin nop sink
	- unknown type returns error
*/
func TestSinkFactory_Builtins(t *testing.T) {
	s, err := metrics.NewSchedulerSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewSchedulerSink([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

/*
TestNewSchedulerSink_Multi validates NewSchedulerSink behavior with zero,
one, and multiple configs.
Cases:
  - no config -> NopSink
  - two configs -> MultiSink with two sub-sinks
*/
func TestNewSchedulerSink_Multi(t *testing.T) {
	s, err := metrics.NewSchedulerSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "memory"}}
	s, err = metrics.NewSchedulerSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	multi, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(multi.Sinks) != 2 {
		t.Fatalf("expected 2 sub-sinks, got %d", len(multi.Sinks))
	}
}
