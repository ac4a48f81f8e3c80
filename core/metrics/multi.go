package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []SchedulerSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...SchedulerSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDayResult forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDayResult(ev DayResultEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDayResult(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolve forwards solve attempts to sinks that record them.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SolveRecorder); ok {
			if err := rec.RecordSolve(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStayStats forwards stay summaries to sinks that record them.
func (m *MultiSink) RecordStayStats(ev StayStatsEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StayStatsRecorder); ok {
			if err := rec.RecordStayStats(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
