package model

import (
	"fmt"
	"sort"
	"time"
)

// DayConfig carries everything needed to schedule one operating day. It is
// built once by the planner, validated, and shared read-only by every
// pipeline stage afterwards.
type DayConfig struct {
	Date        time.Time
	Jobs        map[string]int      // job code -> applicant headcount
	Activities  []Activity
	Rooms       []Room
	Hours       Window
	Rules       []PrecedenceRule
	Eligibility map[string][]string // job code -> required activity names
	GlobalGap   int                 // minutes, minimum gap for non-adjacent rules
	Buffer      int                 // minutes between consecutive slots in a room
}

// JobCodes returns the job codes in stable sorted order.
func (c *DayConfig) JobCodes() []string {
	codes := make([]string, 0, len(c.Jobs))
	for code := range c.Jobs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ActivityByName looks up an activity in the day's catalog.
func (c *DayConfig) ActivityByName(name string) (Activity, bool) {
	for _, a := range c.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

// RoomsByType returns the rooms of the given type sorted by name.
func (c *DayConfig) RoomsByType(roomType string) []Room {
	var out []Room
	for _, r := range c.Rooms {
		if r.Type == roomType {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ActivitiesFor returns the activity names required for a job, in catalog
// order. Jobs without an eligibility entry require every activity.
func (c *DayConfig) ActivitiesFor(jobCode string) []string {
	required, ok := c.Eligibility[jobCode]
	if !ok {
		names := make([]string, len(c.Activities))
		for i, a := range c.Activities {
			names[i] = a.Name
		}
		return names
	}
	set := make(map[string]bool, len(required))
	for _, name := range required {
		set[name] = true
	}
	var out []string
	for _, a := range c.Activities {
		if set[a.Name] {
			out = append(out, a.Name)
		}
	}
	return out
}

// RulesInto returns the precedence rules with the given successor whose
// predecessor the job also requires.
func (c *DayConfig) RulesInto(jobCode, successor string) []PrecedenceRule {
	required := make(map[string]bool)
	for _, name := range c.ActivitiesFor(jobCode) {
		required[name] = true
	}
	var out []PrecedenceRule
	for _, r := range c.Rules {
		if r.Successor == successor && required[r.Predecessor] {
			out = append(out, r)
		}
	}
	return out
}

// Validate rejects configurations that can never schedule: unknown
// activities in rules or eligibility, inverted capacity bounds, activities
// with no compatible room, an empty operating window.
func (c *DayConfig) Validate() error {
	if c.Hours.End <= c.Hours.Start {
		return Configf("operating hours %s-%s are empty", c.Hours.Start, c.Hours.End)
	}
	for _, a := range c.Activities {
		if err := a.Validate(); err != nil {
			return err
		}
		if len(c.RoomsByType(a.RoomType)) == 0 {
			return Configf("activity %s: no room of type %s", a.Name, a.RoomType)
		}
	}
	for _, r := range c.Rules {
		if _, ok := c.ActivityByName(r.Predecessor); !ok {
			return Configf("precedence rule: unknown predecessor %s", r.Predecessor)
		}
		if _, ok := c.ActivityByName(r.Successor); !ok {
			return Configf("precedence rule: unknown successor %s", r.Successor)
		}
	}
	for job, names := range c.Eligibility {
		for _, name := range names {
			if _, ok := c.ActivityByName(name); !ok {
				return Configf("eligibility for job %s: unknown activity %s", job, name)
			}
		}
	}
	return nil
}

// BuildApplicants materializes the day's real applicants from the job
// roster: one applicant per head, ids numbered per job in roster order.
func (c *DayConfig) BuildApplicants() []Applicant {
	var out []Applicant
	for _, job := range c.JobCodes() {
		count := c.Jobs[job]
		required := c.ActivitiesFor(job)
		for i := 1; i <= count; i++ {
			out = append(out, Applicant{
				ID:         jobApplicantID(job, i),
				JobCode:    job,
				Activities: required,
			})
		}
	}
	return out
}

func jobApplicantID(job string, n int) string {
	return fmt.Sprintf("%s_%03d", job, n)
}
