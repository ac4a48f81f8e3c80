package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// Add returns the clock shifted by the given number of minutes.
func (c Clock) Add(mins int) Clock { return c + Clock(mins) }

// String renders the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON renders the clock as its HH:MM string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the HH:MM form.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClock parses an HH:MM string into a Clock.
func ParseClock(s string) (Clock, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return Clock(h*60 + m), nil
}

// Window is a half-open [Start,End) interval within one day.
type Window struct {
	Start Clock
	End   Clock
}

// Contains reports whether [start,end) lies entirely inside the window.
func (w Window) Contains(start, end Clock) bool {
	return start >= w.Start && end <= w.End
}

// Minutes returns the window length in minutes.
func (w Window) Minutes() int { return int(w.End - w.Start) }

// RoomAssignment binds one group performing one batched activity to a room
// and interval. Assignments are produced by the batched scheduler and, when
// the post-optimizer moves groups, replaced wholesale rather than patched.
type RoomAssignment struct {
	GroupID  string
	JobCode  string
	Activity string
	Room     string
	Start    Clock
	End      Clock
}

// ScheduleItem is the universal output unit: one applicant performing one
// activity in one room over one interval.
type ScheduleItem struct {
	ApplicantID string `json:"applicant_id"`
	JobCode     string `json:"job_code"`
	Activity    string `json:"activity"`
	Room        string `json:"room"`
	Start       Clock  `json:"start"`
	End         Clock  `json:"end"`
	GroupID     string `json:"group_id,omitempty"`
}

// Overlaps reports whether two items occupy intersecting intervals.
func (it ScheduleItem) Overlaps(other ScheduleItem) bool {
	return it.Start < other.End && other.Start < it.End
}

// SortItems orders items canonically: start, job code, applicant, activity.
// Re-running the pipeline on identical input must yield byte-identical
// output, so every producer sorts before handing items forward.
func SortItems(items []ScheduleItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.JobCode != b.JobCode {
			return a.JobCode < b.JobCode
		}
		if a.ApplicantID != b.ApplicantID {
			return a.ApplicantID < b.ApplicantID
		}
		return a.Activity < b.Activity
	})
}

// ItemsByApplicant groups items by applicant id, each slice sorted by start.
func ItemsByApplicant(items []ScheduleItem) map[string][]ScheduleItem {
	m := make(map[string][]ScheduleItem)
	for _, it := range items {
		m[it.ApplicantID] = append(m[it.ApplicantID], it)
	}
	for id := range m {
		s := m[id]
		sort.Slice(s, func(i, j int) bool { return s[i].Start < s[j].Start })
	}
	return m
}

// RealItems returns the items excluding filler applicants, canonically
// sorted. This is the external shape of a schedule.
func RealItems(items []ScheduleItem) []ScheduleItem {
	out := make([]ScheduleItem, 0, len(items))
	for _, it := range items {
		if !IsFillerID(it.ApplicantID) {
			out = append(out, it)
		}
	}
	SortItems(out)
	return out
}

// StayAnalysis is the derived per-applicant view used by the post-optimizer.
// It is recomputed fresh on every pass, never cached.
type StayAnalysis struct {
	ApplicantID string
	JobCode     string
	FirstStart  Clock
	LastEnd     Clock
	Stay        int // minutes from first start to last end
	Potential   int // minutes recoverable by closing the largest gap
}
