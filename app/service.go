// Package app wires configuration, logging, metrics, notification, and the
// planner into a runnable service.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jayquinn/interview-scheduler-sub001/config"
	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/core/planner"
	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
	"github.com/jayquinn/interview-scheduler-sub001/infra/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/infra/notify"
	"github.com/jayquinn/interview-scheduler-sub001/internal/eventbus"
	"github.com/jayquinn/interview-scheduler-sub001/pkg/export"
)

// Service runs a whole scheduling plan and writes the outputs.
type Service struct {
	planner  *planner.Planner
	bus      *dayrun.Bus
	sink     coremetrics.SchedulerSink
	notifier notify.Notifier
	log      logger.Logger
	runID    string
	output   config.OutputConfig
	promPort string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Pretty); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logg := logger.New("service")

	plan, err := cfg.Plan.ToPlan()
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	dayCfg, err := cfg.Scheduler.DayrunConfig()
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	sink, err := coremetrics.NewSchedulerSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bus := eventbus.New[dayrun.TransitionEvent]()
	p := planner.New(plan, dayCfg, logg)
	p.SetWorkers(cfg.Scheduler.Workers)
	p.SetSink(sink)
	p.SetBus(bus)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Broker != "" {
		n, err := notify.NewMQTTNotifier(cfg.Notify)
		if err != nil {
			return nil, fmt.Errorf("notify: %w", err)
		}
		notifier = n
	}

	promPort := ""
	for _, s := range cfg.Metrics.Sinks {
		if s.Type == "prometheus" && cfg.Metrics.PrometheusPort != "" {
			promPort = cfg.Metrics.PrometheusPort
		}
	}

	return &Service{
		planner:  p,
		bus:      bus,
		sink:     sink,
		notifier: notifier,
		log:      logg,
		runID:    uuid.NewString(),
		output:   cfg.Output,
		promPort: promPort,
	}, nil
}

// RunID identifies this run in diagnostics and progress messages.
func (s *Service) RunID() string { return s.runID }

// Run schedules the plan and writes the schedule and report documents.
func (s *Service) Run(ctx context.Context) (*planner.Report, error) {
	defer s.bus.Close()
	defer s.notifier.Close()

	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	notify.StartBridge(ctx, s.bus, s.notifier, s.runID)

	s.log.Infof("run %s starting", s.runID)
	report, err := s.planner.Run(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range report.Days {
		_ = s.notifier.DayStatus(notify.DayStatus{
			RunID:  s.runID,
			Date:   d.Date.Format("2006-01-02"),
			Stage:  "final",
			Status: d.Status,
			Error:  d.Failure,
		})
	}

	if err := s.writeOutputs(report); err != nil {
		return report, err
	}
	return report, nil
}

// scheduleDocument is the top-level JSON written for a run.
type scheduleDocument struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	*planner.Report
}

func (s *Service) writeOutputs(report *planner.Report) error {
	doc := scheduleDocument{
		RunID:       s.runID,
		GeneratedAt: time.Now().UTC(),
		Report:      report,
	}
	if err := writeJSON(s.output.SchedulePath, doc); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	if s.output.ReportPath != "" && s.output.ReportPath != s.output.SchedulePath {
		summary := *report
		summary.Days = make([]planner.DayResult, len(report.Days))
		for i, d := range report.Days {
			d.Items = nil
			d.Assignments = nil
			summary.Days[i] = d
		}
		doc.Report = &summary
		if err := writeJSON(s.output.ReportPath, doc); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if s.output.CSVPath != "" {
		if err := s.writeCSV(report); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	return nil
}

func (s *Service) writeCSV(report *planner.Report) error {
	f, err := os.Create(s.output.CSVPath)
	if err != nil {
		return err
	}
	defer f.Close()
	days := make([]export.DaySchedule, len(report.Days))
	for i, d := range report.Days {
		days[i] = export.DaySchedule{Date: d.Date.Format("2006-01-02"), Items: d.Items}
	}
	return export.WriteCSV(f, days)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
