package model

import (
	"fmt"
	"strings"
)

// FillerPrefix marks synthetic applicants used to pad a group up to its
// minimum occupancy. Fillers never appear in external output.
const FillerPrefix = "_filler_"

// Applicant is one person to schedule. Created once per day run and never
// mutated afterwards.
type Applicant struct {
	ID         string
	JobCode    string
	Activities []string // names of required activities
}

// IsFiller reports whether the applicant is a synthetic padding entry.
func (a Applicant) IsFiller() bool { return IsFillerID(a.ID) }

// IsFillerID reports whether an applicant id denotes a filler.
func IsFillerID(id string) bool { return strings.HasPrefix(id, FillerPrefix) }

// FillerSeq mints globally-unique filler ids for a single day run. It is
// threaded explicitly through the pipeline so concurrent day runs never
// share state.
type FillerSeq struct {
	next int
}

// Next returns a fresh filler id for the given job code.
func (s *FillerSeq) Next(jobCode string) string {
	s.next++
	return fmt.Sprintf("%s%s_%03d", FillerPrefix, jobCode, s.next)
}
