package metrics

import (
	"sort"
	"sync"
	"time"
)

// MemorySink keeps recorded events in memory for testing or lightweight
// usage, for example feeding the end-of-run report without an external
// metrics backend.
type MemorySink struct {
	mu     sync.Mutex
	days   map[time.Time]DayResultEvent
	solves []SolveEvent
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{days: map[time.Time]DayResultEvent{}}
}

// RecordDayResult stores the latest result per day.
func (s *MemorySink) RecordDayResult(ev DayResultEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[day(ev.Date)] = ev
	return nil
}

// RecordSolve appends the solve attempt.
func (s *MemorySink) RecordSolve(ev SolveEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solves = append(s.solves, ev)
	return nil
}

// Days returns the recorded day results in date order.
func (s *MemorySink) Days() []DayResultEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DayResultEvent, 0, len(s.days))
	for _, ev := range s.days {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Solves returns the recorded solve attempts in arrival order.
func (s *MemorySink) Solves() []SolveEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SolveEvent(nil), s.solves...)
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
