// Package planner expands a multi-day plan into per-day configurations and
// runs the single-day pipeline for each date. Days are independent; a
// failed day never blocks the others, and the aggregate status reflects how
// many days produced a schedule.
package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// RoomTemplate describes one room or a family of identical rooms. A Count
// above one materializes suffixed siblings (Name A, Name B, ...) so batched
// placement can keep a job on one suffix.
type RoomTemplate struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
	Count    int    `json:"count"`
}

// DaySpec describes one operating day. Nil or zero fields inherit the plan
// defaults.
type DaySpec struct {
	Date        time.Time
	Jobs        map[string]int
	Activities  []model.Activity
	Rooms       []RoomTemplate
	Hours       *model.Window
	Rules       []model.PrecedenceRule
	Eligibility map[string][]string
	GlobalGap   *int
	Buffer      *int
}

// Plan is the full multi-day scheduling request: shared defaults plus one
// DaySpec per date.
type Plan struct {
	Activities  []model.Activity
	Rooms       []RoomTemplate
	Hours       model.Window
	Rules       []model.PrecedenceRule
	Eligibility map[string][]string
	GlobalGap   int
	Buffer      int
	Days        []DaySpec
}

// Validate rejects plans with no days or duplicate dates. Per-day
// configuration problems surface later, when the day itself is
// materialized.
func (p *Plan) Validate() error {
	if len(p.Days) == 0 {
		return model.Configf("plan has no days")
	}
	seen := make(map[string]bool, len(p.Days))
	for _, d := range p.Days {
		key := d.Date.Format("2006-01-02")
		if seen[key] {
			return model.Configf("duplicate day %s", key)
		}
		seen[key] = true
		if len(d.Jobs) == 0 {
			return model.Configf("day %s has no jobs", key)
		}
	}
	return nil
}

// MaterializeRooms expands room templates into concrete rooms. Multi-count
// templates get uppercase letter suffixes; a count beyond the alphabet is
// rejected.
func MaterializeRooms(templates []RoomTemplate) ([]model.Room, error) {
	var rooms []model.Room
	for _, t := range templates {
		count := t.Count
		if count <= 1 {
			rooms = append(rooms, model.Room{Name: t.Name, Type: t.Type, Capacity: t.Capacity})
			continue
		}
		if count > 26 {
			return nil, model.Configf("room template %s: count %d exceeds 26", t.Name, count)
		}
		for i := 0; i < count; i++ {
			name := fmt.Sprintf("%s%c", t.Name, 'A'+i)
			rooms = append(rooms, model.Room{Name: name, Type: t.Type, Capacity: t.Capacity})
		}
	}
	return rooms, nil
}

// DayConfig merges the plan defaults with a day's overrides into the
// validated per-day configuration the pipeline consumes.
func (p *Plan) DayConfig(spec DaySpec) (*model.DayConfig, error) {
	activities := spec.Activities
	if activities == nil {
		activities = p.Activities
	}
	templates := spec.Rooms
	if templates == nil {
		templates = p.Rooms
	}
	rooms, err := MaterializeRooms(templates)
	if err != nil {
		return nil, err
	}
	hours := p.Hours
	if spec.Hours != nil {
		hours = *spec.Hours
	}
	rules := spec.Rules
	if rules == nil {
		rules = p.Rules
	}
	eligibility := spec.Eligibility
	if eligibility == nil {
		eligibility = p.Eligibility
	}
	gap := p.GlobalGap
	if spec.GlobalGap != nil {
		gap = *spec.GlobalGap
	}
	buffer := p.Buffer
	if spec.Buffer != nil {
		buffer = *spec.Buffer
	}
	cfg := &model.DayConfig{
		Date:        spec.Date,
		Jobs:        spec.Jobs,
		Activities:  activities,
		Rooms:       rooms,
		Hours:       hours,
		Rules:       rules,
		Eligibility: eligibility,
		GlobalGap:   gap,
		Buffer:      buffer,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sortedDays returns the plan's days in ascending date order without
// mutating the plan.
func (p *Plan) sortedDays() []DaySpec {
	days := append([]DaySpec(nil), p.Days...)
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
