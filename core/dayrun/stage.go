package dayrun

import "time"

// Stage identifies a state of the single-day pipeline.
type Stage int

const (
	StageGroupOptimize Stage = iota
	StageBatched
	StageIndividual
	StagePostOptimize
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageGroupOptimize:
		return "group_optimize"
	case StageBatched:
		return "batched_schedule"
	case StageIndividual:
		return "individual_schedule"
	case StagePostOptimize:
		return "post_optimize"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Attempt is one entry of the enumerable backtracking history. Every retry
// heuristic decision the orchestrator takes is reconstructible from the
// attempt list alone.
type Attempt struct {
	Stage      Stage
	Attempt    int
	FillerHint int
	Err        string
	Elapsed    time.Duration
}

// TransitionEvent is published on the event bus after every state
// transition. It is a side channel only; no scheduling decision ever reads
// from it.
type TransitionEvent struct {
	Date    time.Time
	From    Stage
	To      Stage
	Attempt int
	Err     string
}
