package model

import (
	"errors"
	"fmt"
)

// ErrSolverTimeout is returned when the exact solver exhausts its time
// budget without finding a feasible solution.
var ErrSolverTimeout = errors.New("solver time budget exhausted without feasible solution")

// ConfigurationError marks input that can never be scheduled: precedence
// cycles among batched activities, inverted capacity bounds, an activity
// with no compatible room. It is fatal for the day and never retried.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Detail
}

// Configf builds a ConfigurationError from a format string.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Detail: fmt.Sprintf(format, args...)}
}

// PlacementError reports that a stage could not place a group or applicant
// within the room and time limits. It carries enough context for the
// orchestrator's retry heuristics and for diagnostics; it is retryable up
// to the backtracking budget.
type PlacementError struct {
	Stage       string
	Activity    string
	GroupID     string
	ApplicantID string
	Reason      string
}

func (e *PlacementError) Error() string {
	msg := e.Stage + ": cannot place"
	if e.Activity != "" {
		msg += " activity " + e.Activity
	}
	if e.GroupID != "" {
		msg += " for group " + e.GroupID
	}
	if e.ApplicantID != "" {
		msg += " for applicant " + e.ApplicantID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IntegrityError reports a schedule that violates a structural invariant.
// The post-optimizer raises and consumes these itself, discarding the
// offending output; they are never propagated to callers.
type IntegrityError struct {
	Check  string
	Detail string
}

func (e *IntegrityError) Error() string {
	return "integrity: " + e.Check + ": " + e.Detail
}
