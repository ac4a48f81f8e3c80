package planner

import (
	"context"
	"sync"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// DayResult is the outcome of one day within a plan run.
type DayResult struct {
	Date         time.Time                `json:"date"`
	Status       string                   `json:"status"`
	Items        []model.ScheduleItem     `json:"items,omitempty"`
	Assignments  []model.RoomAssignment   `json:"room_assignments,omitempty"`
	Analyses     []model.StayAnalysis     `json:"-"`
	Attempts     []dayrun.Attempt         `json:"-"`
	Strategy     string                   `json:"strategy,omitempty"`
	Improved     bool                     `json:"improved"`
	SavedMinutes int                      `json:"saved_minutes"`
	Failure      string                   `json:"failure,omitempty"`
	Applicants   int                      `json:"applicants"`
	Scheduled    int                      `json:"scheduled"`
	Elapsed      time.Duration            `json:"-"`
}

// Report aggregates a whole plan run.
type Report struct {
	Status          model.RunStatus `json:"-"`
	StatusText      string          `json:"status"`
	Days            []DayResult     `json:"days"`
	TotalApplicants int             `json:"total_applicants"`
	TotalScheduled  int             `json:"total_scheduled"`
	FailedDates     []string        `json:"failed_dates,omitempty"`
	SavedMinutes    int             `json:"saved_minutes"`
}

// Planner runs every day of a plan through the single-day pipeline.
type Planner struct {
	plan    Plan
	dayCfg  dayrun.Config
	log     logger.Logger
	bus     *dayrun.Bus
	sink    metrics.SchedulerSink
	workers int
}

// New returns a Planner with sequential execution and no metrics sink.
func New(plan Plan, dayCfg dayrun.Config, log logger.Logger) *Planner {
	return &Planner{plan: plan, dayCfg: dayCfg, log: log, sink: metrics.NopSink{}, workers: 1}
}

// SetBus wires a progress event bus shared by every day run.
func (p *Planner) SetBus(bus *dayrun.Bus) { p.bus = bus }

// SetSink replaces the metrics sink. A nil sink restores the no-op sink.
func (p *Planner) SetSink(sink metrics.SchedulerSink) {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	p.sink = sink
}

// SetWorkers bounds the number of days scheduled concurrently. Days are
// independent, so concurrent execution yields the same per-day results as
// sequential execution.
func (p *Planner) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	p.workers = n
}

// Run schedules every day and aggregates the outcomes. It returns an error
// only when the plan itself is invalid; per-day failures are reported in
// the Report.
func (p *Planner) Run(ctx context.Context) (*Report, error) {
	if err := p.plan.Validate(); err != nil {
		return nil, err
	}
	days := p.plan.sortedDays()
	results := make([]DayResult, len(days))

	workers := p.workers
	if workers > len(days) {
		workers = len(days)
	}
	if workers <= 1 {
		for i, spec := range days {
			results[i] = p.runDay(ctx, spec)
		}
	} else {
		indices := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indices {
					results[i] = p.runDay(ctx, days[i])
				}
			}()
		}
		for i := range days {
			indices <- i
		}
		close(indices)
		wg.Wait()
	}

	report := &Report{Days: results}
	succeeded := 0
	for _, r := range results {
		report.TotalApplicants += r.Applicants
		report.TotalScheduled += r.Scheduled
		report.SavedMinutes += r.SavedMinutes
		if r.Status == model.StatusSuccess.String() {
			succeeded++
		} else {
			report.FailedDates = append(report.FailedDates, r.Date.Format("2006-01-02"))
		}
	}
	switch {
	case succeeded == len(results):
		report.Status = model.StatusSuccess
	case succeeded == 0:
		report.Status = model.StatusFailed
	default:
		report.Status = model.StatusPartial
	}
	report.StatusText = report.Status.String()
	p.log.Infof("plan finished: %s, %d/%d days, %d/%d applicants scheduled",
		report.Status, succeeded, len(results), report.TotalScheduled, report.TotalApplicants)
	return report, nil
}

func (p *Planner) runDay(ctx context.Context, spec DaySpec) DayResult {
	started := time.Now()
	out := DayResult{Date: spec.Date, Status: model.StatusFailed.String()}
	for _, n := range spec.Jobs {
		out.Applicants += n
	}

	cfg, err := p.plan.DayConfig(spec)
	if err != nil {
		out.Failure = err.Error()
		out.Elapsed = time.Since(started)
		p.log.Errorf("day %s: %v", spec.Date.Format("2006-01-02"), err)
		p.record(out)
		return out
	}

	orc := dayrun.New(cfg, p.dayCfg, p.log)
	if p.bus != nil {
		orc.SetBus(p.bus)
	}
	res := orc.Run(ctx)

	out.Status = res.Status.String()
	out.Items = res.Items
	out.Assignments = res.Assignments
	out.Analyses = res.Analyses
	out.Attempts = res.Attempts
	out.Strategy = res.Strategy
	out.Improved = res.Improved
	out.SavedMinutes = res.SavedMinutes
	out.Failure = res.Failure
	out.Scheduled = len(model.ItemsByApplicant(res.Items))
	out.Elapsed = time.Since(started)
	p.record(out)
	return out
}

func (p *Planner) record(r DayResult) {
	backtracks := 0
	for _, a := range r.Attempts {
		if a.Err != "" {
			backtracks++
		}
	}
	status := model.StatusFailed
	if r.Status == model.StatusSuccess.String() {
		status = model.StatusSuccess
	}
	if err := p.sink.RecordDayResult(metrics.DayResultEvent{
		Date:         r.Date,
		Status:       status,
		Applicants:   r.Applicants,
		Scheduled:    r.Scheduled,
		Backtracks:   backtracks,
		Strategy:     r.Strategy,
		Improved:     r.Improved,
		SavedMinutes: r.SavedMinutes,
		Elapsed:      r.Elapsed,
	}); err != nil {
		p.log.Warnf("day result not recorded: %v", err)
	}
	if rec, ok := p.sink.(metrics.StayStatsRecorder); ok && len(r.Analyses) > 0 {
		var sum, max, outliers int
		for _, a := range r.Analyses {
			sum += a.Stay
			if a.Stay > max {
				max = a.Stay
			}
			if a.Potential > 0 {
				outliers++
			}
		}
		if err := rec.RecordStayStats(metrics.StayStatsEvent{
			Date:       r.Date,
			MeanStay:   float64(sum) / float64(len(r.Analyses)),
			MaxStay:    max,
			Outliers:   outliers,
			Applicants: len(r.Analyses),
		}); err != nil {
			p.log.Warnf("stay stats not recorded: %v", err)
		}
	}
}
