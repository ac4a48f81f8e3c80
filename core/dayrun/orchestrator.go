// Package dayrun drives the four scheduling stages for one operating day
// as an explicit state machine with bounded backtracking: a batched
// placement failure retries group formation with escalating filler hints, an
// individual placement failure retries itself and then falls back into the
// batched retry path, all within a fixed backtrack budget.
package dayrun

import (
	"context"
	"errors"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/batch"
	"github.com/jayquinn/interview-scheduler-sub001/core/grouping"
	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/core/postopt"
	"github.com/jayquinn/interview-scheduler-sub001/core/slotting"
	"github.com/jayquinn/interview-scheduler-sub001/internal/eventbus"
)

// Config bounds the backtracking and the exact solver.
type Config struct {
	// MaxBatchedRetries caps retries of the group-optimize/batched pair.
	MaxBatchedRetries int
	// MaxIndividualRetries caps in-place retries of the individual stage.
	MaxIndividualRetries int
	// MaxBacktracks caps the total backtrack count across both paths.
	MaxBacktracks int
	// SolverBudget is the exact solver's wall-clock budget per attempt.
	SolverBudget time.Duration
	// FillerHints is the escalation sequence of extra fillers per job used
	// on batched retries; past the end the last value repeats.
	FillerHints []int
	// PostOpt tunes the stay-time post-optimizer.
	PostOpt postopt.Config
}

// DefaultConfig returns the documented retry caps: three batched retries,
// two individual retries, five backtracks overall, and the +1, +2, double,
// +5 filler escalation.
func DefaultConfig() Config {
	return Config{
		MaxBatchedRetries:    3,
		MaxIndividualRetries: 2,
		MaxBacktracks:        5,
		SolverBudget:         30 * time.Second,
		FillerHints:          []int{1, 3, 6, 11},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxBatchedRetries == 0 {
		c.MaxBatchedRetries = d.MaxBatchedRetries
	}
	if c.MaxIndividualRetries == 0 {
		c.MaxIndividualRetries = d.MaxIndividualRetries
	}
	if c.MaxBacktracks == 0 {
		c.MaxBacktracks = d.MaxBacktracks
	}
	if c.SolverBudget == 0 {
		c.SolverBudget = d.SolverBudget
	}
	if len(c.FillerHints) == 0 {
		c.FillerHints = d.FillerHints
	}
	return c
}

func (c Config) hintFor(batchedAttempt int) int {
	if batchedAttempt == 0 {
		return 0
	}
	if batchedAttempt <= len(c.FillerHints) {
		return c.FillerHints[batchedAttempt-1]
	}
	return c.FillerHints[len(c.FillerHints)-1]
}

// Result is the terminal output of a day run.
type Result struct {
	Status       model.RunStatus
	Items        []model.ScheduleItem // fillers excluded, canonically sorted
	Assignments  []model.RoomAssignment
	Analyses     []model.StayAnalysis
	Attempts     []Attempt
	Strategy     string // which individual strategy produced the schedule
	Improved     bool
	SavedMinutes int
	Failure      string
}

// Bus carries the orchestrator's transition events to observers.
type Bus = eventbus.Bus[TransitionEvent]

// Orchestrator runs one day through the pipeline.
type Orchestrator struct {
	day *model.DayConfig
	cfg Config
	log logger.Logger
	bus *Bus
}

// New returns an orchestrator for the given day.
func New(day *model.DayConfig, cfg Config, log logger.Logger) *Orchestrator {
	return &Orchestrator{day: day, cfg: cfg.withDefaults(), log: log}
}

// SetBus wires an optional progress observer bus.
func (o *Orchestrator) SetBus(bus *Bus) { o.bus = bus }

func (o *Orchestrator) publish(from, to Stage, attempt int, err error) {
	if o.bus == nil {
		return
	}
	ev := TransitionEvent{Date: o.day.Date, From: from, To: to, Attempt: attempt}
	if err != nil {
		ev.Err = err.Error()
	}
	o.bus.Publish(ev)
}

// Run executes the state machine to a terminal state. The context bounds
// the exact solver; the backtracking loop itself is bounded by the retry
// caps, so Run always terminates.
func (o *Orchestrator) Run(ctx context.Context) *Result {
	res := &Result{Status: model.StatusFailed}
	if err := o.day.Validate(); err != nil {
		res.Failure = err.Error()
		o.log.Errorf("day %s rejected: %v", o.day.Date.Format("2006-01-02"), err)
		return res
	}
	applicants := o.day.BuildApplicants()

	batchedAttempt := 0
	backtracks := 0
	for {
		hint := o.cfg.hintFor(batchedAttempt)
		started := time.Now()
		seq := &model.FillerSeq{}
		groups, err := grouping.BuildGroups(o.day, applicants, hint, seq)
		res.Attempts = append(res.Attempts, Attempt{
			Stage: StageGroupOptimize, Attempt: batchedAttempt, FillerHint: hint,
			Err: errString(err), Elapsed: time.Since(started),
		})
		o.publish(StageGroupOptimize, StageBatched, batchedAttempt, err)
		if err != nil {
			// Group planning only fails on configuration errors.
			res.Failure = err.Error()
			return res
		}

		started = time.Now()
		bres, err := batch.New(o.day, o.log).Schedule(groups)
		res.Attempts = append(res.Attempts, Attempt{
			Stage: StageBatched, Attempt: batchedAttempt, FillerHint: hint,
			Err: errString(err), Elapsed: time.Since(started),
		})
		if err != nil {
			var cfgErr *model.ConfigurationError
			if errors.As(err, &cfgErr) {
				o.publish(StageBatched, StageFailed, batchedAttempt, err)
				res.Failure = err.Error()
				return res
			}
			o.publish(StageBatched, StageGroupOptimize, batchedAttempt, err)
			batchedAttempt++
			backtracks++
			if batchedAttempt > o.cfg.MaxBatchedRetries || backtracks > o.cfg.MaxBacktracks {
				res.Failure = "batched placement retries exhausted: " + err.Error()
				return res
			}
			o.log.Warnf("batched placement failed, retrying with filler hint %d: %v", o.cfg.hintFor(batchedAttempt), err)
			continue
		}
		o.publish(StageBatched, StageIndividual, batchedAttempt, nil)

		items, ok := o.individualWithRetries(ctx, res, applicants, bres, &backtracks)
		if !ok {
			if backtracks > o.cfg.MaxBacktracks || batchedAttempt >= o.cfg.MaxBatchedRetries {
				res.Failure = "individual placement retries exhausted"
				o.publish(StageIndividual, StageFailed, batchedAttempt, nil)
				return res
			}
			// Fall back into the batched retry path.
			o.publish(StageIndividual, StageGroupOptimize, batchedAttempt, nil)
			batchedAttempt++
			backtracks++
			continue
		}

		combined := append(append([]model.ScheduleItem(nil), bres.Items...), items...)
		o.publish(StageIndividual, StagePostOptimize, batchedAttempt, nil)

		started = time.Now()
		opt := postopt.New(o.day, o.cfg.PostOpt, o.log).Optimize(combined, bres.Assignments)
		res.Attempts = append(res.Attempts, Attempt{
			Stage: StagePostOptimize, Attempt: 0, Elapsed: time.Since(started),
		})
		o.publish(StagePostOptimize, StageDone, batchedAttempt, nil)

		res.Status = model.StatusSuccess
		res.Items = model.RealItems(opt.Items)
		res.Assignments = opt.Assignments
		res.Analyses = opt.Analyses
		res.Improved = opt.Improved
		res.SavedMinutes = opt.SavedMinutes
		return res
	}
}

// individualWithRetries runs the individual stage with its in-place retry
// budget. The attempts are recorded; ok reports whether any attempt
// produced a schedule.
func (o *Orchestrator) individualWithRetries(ctx context.Context, res *Result, applicants []model.Applicant, bres *batch.Result, backtracks *int) ([]model.ScheduleItem, bool) {
	real := make([]model.Applicant, 0, len(applicants))
	for _, a := range applicants {
		if !a.IsFiller() {
			real = append(real, a)
		}
	}
	for attempt := 0; ; attempt++ {
		started := time.Now()
		items, strategy, err := o.individualOnce(ctx, real, bres.Items)
		res.Attempts = append(res.Attempts, Attempt{
			Stage: StageIndividual, Attempt: attempt,
			Err: errString(err), Elapsed: time.Since(started),
		})
		if err == nil {
			res.Strategy = strategy
			return items, true
		}
		o.log.Warnf("individual placement attempt %d failed: %v", attempt, err)
		if attempt >= o.cfg.MaxIndividualRetries || *backtracks >= o.cfg.MaxBacktracks {
			return nil, false
		}
		*backtracks++
		o.publish(StageIndividual, StageIndividual, attempt+1, err)
	}
}

// individualOnce tries the heuristic, then the exact solver under its time
// budget. Heuristic failure is expected and non-fatal.
func (o *Orchestrator) individualOnce(ctx context.Context, applicants []model.Applicant, fixed []model.ScheduleItem) ([]model.ScheduleItem, string, error) {
	items, err := slotting.NewHeuristic(o.day, o.log).Schedule(applicants, fixed)
	if err == nil {
		return items, "heuristic", nil
	}
	o.log.Infof("heuristic placement failed, falling back to exact solver: %v", err)

	solveCtx, cancel := context.WithTimeout(ctx, o.cfg.SolverBudget)
	defer cancel()
	items, err = slotting.NewSolver(o.day, o.log).Schedule(solveCtx, applicants, fixed)
	if err != nil {
		return nil, "", err
	}
	return items, "exact", nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
