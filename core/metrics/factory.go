package metrics

import "github.com/jayquinn/interview-scheduler-sub001/core/factory"

var sinkRegistry = factory.NewRegistry[SchedulerSink]()

// RegisterSchedulerSink adds a sink factory identified by name.
func RegisterSchedulerSink(name string, f factory.Factory[SchedulerSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSchedulerSink creates a SchedulerSink from the provided configuration.
func NewSchedulerSink(cfgs []factory.ModuleConfig) (SchedulerSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]SchedulerSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
