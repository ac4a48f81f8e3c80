package config

import (
	"fmt"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/core/postopt"
)

// PostOptConfig tunes the stay-time post-optimizer.
type PostOptConfig struct {
	StayFloorMinutes    int      `json:"stay_floor_minutes"`
	MinPotentialMinutes int      `json:"min_potential_minutes"`
	GapBufferMinutes    int      `json:"gap_buffer_minutes"`
	MaxMoves            int      `json:"max_moves"`
	CandidateSlots      []string `json:"candidate_slots"`
}

// SchedulerConfig bounds the backtracking pipeline.
type SchedulerConfig struct {
	MaxBatchedRetries    int           `json:"max_batched_retries"`
	MaxIndividualRetries int           `json:"max_individual_retries"`
	MaxBacktracks        int           `json:"max_backtracks"`
	SolverBudgetSeconds  int           `json:"solver_budget_seconds"`
	Workers              int           `json:"workers"`
	PostOpt              PostOptConfig `json:"post_opt"`
}

// SetDefaults applies the documented retry caps.
func (c *SchedulerConfig) SetDefaults() {
	d := dayrun.DefaultConfig()
	if c.MaxBatchedRetries == 0 {
		c.MaxBatchedRetries = d.MaxBatchedRetries
	}
	if c.MaxIndividualRetries == 0 {
		c.MaxIndividualRetries = d.MaxIndividualRetries
	}
	if c.MaxBacktracks == 0 {
		c.MaxBacktracks = d.MaxBacktracks
	}
	if c.SolverBudgetSeconds == 0 {
		c.SolverBudgetSeconds = int(d.SolverBudget / time.Second)
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks bounds.
func (c SchedulerConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.SolverBudgetSeconds < 1 {
		return fmt.Errorf("solver_budget_seconds must be at least 1")
	}
	if _, err := c.postOpt(); err != nil {
		return err
	}
	return nil
}

// DayrunConfig converts to the pipeline's tuning struct.
func (c SchedulerConfig) DayrunConfig() (dayrun.Config, error) {
	po, err := c.postOpt()
	if err != nil {
		return dayrun.Config{}, err
	}
	return dayrun.Config{
		MaxBatchedRetries:    c.MaxBatchedRetries,
		MaxIndividualRetries: c.MaxIndividualRetries,
		MaxBacktracks:        c.MaxBacktracks,
		SolverBudget:         time.Duration(c.SolverBudgetSeconds) * time.Second,
		PostOpt:              po,
	}, nil
}

func (c SchedulerConfig) postOpt() (postopt.Config, error) {
	out := postopt.Config{
		StayFloor:    c.PostOpt.StayFloorMinutes,
		MinPotential: c.PostOpt.MinPotentialMinutes,
		GapBuffer:    c.PostOpt.GapBufferMinutes,
		MaxMoves:     c.PostOpt.MaxMoves,
	}
	for _, s := range c.PostOpt.CandidateSlots {
		clock, err := model.ParseClock(s)
		if err != nil {
			return postopt.Config{}, fmt.Errorf("post_opt.candidate_slots: %w", err)
		}
		out.CandidateSlots = append(out.CandidateSlots, clock)
	}
	return out, nil
}
