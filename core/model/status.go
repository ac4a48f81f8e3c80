package model

// RunStatus summarizes the outcome of a day or of a whole plan.
type RunStatus int

const (
	// StatusSuccess means every requested applicant was scheduled.
	StatusSuccess RunStatus = iota
	// StatusPartial means some days succeeded and some failed. Only the
	// multi-day aggregate uses this value.
	StatusPartial
	// StatusFailed means no schedule was produced.
	StatusFailed
)

func (s RunStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
