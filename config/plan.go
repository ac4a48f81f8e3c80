package config

import (
	"fmt"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/core/planner"
)

// ActivityConfig describes one activity of the interview process.
type ActivityConfig struct {
	Name            string `json:"name"`
	Mode            string `json:"mode"`
	DurationMinutes int    `json:"duration_minutes"`
	RoomType        string `json:"room_type"`
	MinCapacity     int    `json:"min_capacity"`
	MaxCapacity     int    `json:"max_capacity"`
}

// HoursConfig is an operating window in HH:MM notation.
type HoursConfig struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RuleConfig is one precedence constraint between two activities.
type RuleConfig struct {
	Predecessor string `json:"predecessor"`
	Successor   string `json:"successor"`
	GapMinutes  int    `json:"gap_minutes"`
	Adjacent    bool   `json:"adjacent"`
}

// DayEntry describes one operating day. Omitted fields inherit the plan
// defaults.
type DayEntry struct {
	Date             string                 `json:"date"`
	Jobs             map[string]int         `json:"jobs"`
	Activities       []ActivityConfig       `json:"activities"`
	Rooms            []planner.RoomTemplate `json:"rooms"`
	Hours            *HoursConfig           `json:"hours"`
	Rules            []RuleConfig           `json:"rules"`
	Eligibility      map[string][]string    `json:"eligibility"`
	GlobalGapMinutes *int                   `json:"global_gap_minutes"`
	BufferMinutes    *int                   `json:"buffer_minutes"`
}

// PlanConfig holds the shared defaults and the per-day entries.
type PlanConfig struct {
	Activities       []ActivityConfig       `json:"activities"`
	Rooms            []planner.RoomTemplate `json:"rooms"`
	Hours            HoursConfig            `json:"hours"`
	Rules            []RuleConfig           `json:"rules"`
	Eligibility      map[string][]string    `json:"eligibility"`
	GlobalGapMinutes int                    `json:"global_gap_minutes"`
	BufferMinutes    int                    `json:"buffer_minutes"`
	Days             []DayEntry             `json:"days"`
}

// SetDefaults fills the plan-wide tuning defaults: ten minutes of buffer
// between consecutive slots in a room.
func (c *PlanConfig) SetDefaults() {
	if c.BufferMinutes == 0 {
		c.BufferMinutes = 10
	}
}

// Validate checks the plan can be converted; the deeper per-day checks run
// when the pipeline materializes each day.
func (c PlanConfig) Validate() error {
	_, err := c.ToPlan()
	return err
}

// ToPlan converts the file representation into the planner's model.
func (c PlanConfig) ToPlan() (planner.Plan, error) {
	activities, err := convertActivities(c.Activities)
	if err != nil {
		return planner.Plan{}, err
	}
	hours, err := convertHours(c.Hours)
	if err != nil {
		return planner.Plan{}, err
	}
	plan := planner.Plan{
		Activities:  activities,
		Rooms:       c.Rooms,
		Hours:       hours,
		Rules:       convertRules(c.Rules),
		Eligibility: c.Eligibility,
		GlobalGap:   c.GlobalGapMinutes,
		Buffer:      c.BufferMinutes,
	}
	for _, d := range c.Days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return planner.Plan{}, fmt.Errorf("day %q: %w", d.Date, err)
		}
		spec := planner.DaySpec{
			Date:        date,
			Jobs:        d.Jobs,
			Rooms:       d.Rooms,
			Eligibility: d.Eligibility,
			GlobalGap:   d.GlobalGapMinutes,
			Buffer:      d.BufferMinutes,
		}
		if d.Activities != nil {
			acts, err := convertActivities(d.Activities)
			if err != nil {
				return planner.Plan{}, fmt.Errorf("day %s: %w", d.Date, err)
			}
			spec.Activities = acts
		}
		if d.Rules != nil {
			spec.Rules = convertRules(d.Rules)
		}
		if d.Hours != nil {
			w, err := convertHours(*d.Hours)
			if err != nil {
				return planner.Plan{}, fmt.Errorf("day %s: %w", d.Date, err)
			}
			spec.Hours = &w
		}
		plan.Days = append(plan.Days, spec)
	}
	return plan, nil
}

func convertActivities(in []ActivityConfig) ([]model.Activity, error) {
	out := make([]model.Activity, 0, len(in))
	for _, a := range in {
		mode, err := model.ParseActivityMode(a.Mode)
		if err != nil {
			return nil, fmt.Errorf("activity %s: %w", a.Name, err)
		}
		out = append(out, model.Activity{
			Name:        a.Name,
			Mode:        mode,
			Duration:    a.DurationMinutes,
			RoomType:    a.RoomType,
			MinCapacity: a.MinCapacity,
			MaxCapacity: a.MaxCapacity,
		})
	}
	return out, nil
}

func convertHours(h HoursConfig) (model.Window, error) {
	start, err := model.ParseClock(h.Start)
	if err != nil {
		return model.Window{}, err
	}
	end, err := model.ParseClock(h.End)
	if err != nil {
		return model.Window{}, err
	}
	return model.Window{Start: start, End: end}, nil
}

func convertRules(in []RuleConfig) []model.PrecedenceRule {
	out := make([]model.PrecedenceRule, 0, len(in))
	for _, r := range in {
		out = append(out, model.PrecedenceRule{
			Predecessor: r.Predecessor,
			Successor:   r.Successor,
			Gap:         r.GapMinutes,
			Adjacent:    r.Adjacent,
		})
	}
	return out
}
