package model

import "fmt"

// ActivityMode distinguishes how an activity consumes rooms and applicants.
type ActivityMode int

const (
	// ModeBatched activities are performed by a fixed cohort together in
	// one room over one interval.
	ModeBatched ActivityMode = iota
	// ModeParallel activities let several applicants share a room and
	// interval as a capacity-bounded batch without a persisted group.
	ModeParallel
	// ModeIndividual activities occupy one room per applicant at a time.
	ModeIndividual
)

// String returns the configuration name of the mode.
func (m ActivityMode) String() string {
	switch m {
	case ModeBatched:
		return "batched"
	case ModeParallel:
		return "parallel"
	case ModeIndividual:
		return "individual"
	}
	return fmt.Sprintf("ActivityMode(%d)", int(m))
}

// ParseActivityMode converts a configuration string into an ActivityMode.
func ParseActivityMode(s string) (ActivityMode, error) {
	switch s {
	case "batched":
		return ModeBatched, nil
	case "parallel":
		return ModeParallel, nil
	case "individual":
		return ModeIndividual, nil
	}
	return 0, &ConfigurationError{Detail: fmt.Sprintf("unknown activity mode %q", s)}
}

// Activity describes one interview stage. Instances are immutable for the
// duration of a day run.
type Activity struct {
	Name        string
	Mode        ActivityMode
	Duration    int // minutes
	RoomType    string
	MinCapacity int
	MaxCapacity int
}

// Validate checks capacity and duration sanity.
func (a Activity) Validate() error {
	if a.Duration <= 0 {
		return &ConfigurationError{Detail: fmt.Sprintf("activity %s: duration must be positive", a.Name)}
	}
	if a.MinCapacity > a.MaxCapacity {
		return &ConfigurationError{Detail: fmt.Sprintf("activity %s: min capacity %d exceeds max %d", a.Name, a.MinCapacity, a.MaxCapacity)}
	}
	return nil
}
