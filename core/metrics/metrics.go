package metrics

import (
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// DayResultEvent is the terminal outcome of one scheduled day.
type DayResultEvent struct {
	Date         time.Time
	Status       model.RunStatus
	Applicants   int
	Scheduled    int
	Backtracks   int
	Strategy     string
	Improved     bool
	SavedMinutes int
	Elapsed      time.Duration
}

// SchedulerSink records day outcomes for observability purposes.
type SchedulerSink interface {
	RecordDayResult(ev DayResultEvent) error
}

// SolveEvent captures one attempt of one pipeline stage.
type SolveEvent struct {
	Date       time.Time
	Stage      string
	Attempt    int
	FillerHint int
	Error      string
	Elapsed    time.Duration
}

// SolveRecorder records per-stage solve attempts.
type SolveRecorder interface {
	RecordSolve(ev SolveEvent) error
}

// StayStatsEvent summarizes applicant stay times after post-optimization.
type StayStatsEvent struct {
	Date       time.Time
	MeanStay   float64
	MaxStay    int
	Outliers   int
	Applicants int
}

// StayStatsRecorder records stay-time summaries.
type StayStatsRecorder interface {
	RecordStayStats(ev StayStatsEvent) error
}

// NopSink implements SchedulerSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordDayResult(DayResultEvent) error { return nil }
func (NopSink) RecordSolve(SolveEvent) error         { return nil }
func (NopSink) RecordStayStats(StayStatsEvent) error { return nil }
