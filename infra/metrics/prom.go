package metrics

import (
	coremetrics "github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling outcomes in Prometheus metrics.
type PromSink struct {
	days     *prometheus.CounterVec
	solves   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	saved    prometheus.Histogram
	stay     prometheus.Histogram
}

// NewPromSink registers scheduler metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.SchedulerSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.SchedulerSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	days := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_days_total",
		Help: "Total number of scheduled days by terminal status",
	}, []string{"status"})
	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_solve_attempts_total",
		Help: "Total number of pipeline stage attempts",
	}, []string{"stage", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_day_duration_seconds",
		Help:    "Wall clock time to schedule one day",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	saved := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_stay_saved_minutes",
		Help:    "Stay time reclaimed by post-optimization per day",
		Buckets: []float64{0, 15, 30, 60, 120, 240, 480},
	})
	stay := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_mean_stay_minutes",
		Help:    "Mean applicant stay time per day",
		Buckets: []float64{30, 60, 120, 180, 240, 360, 480, 600},
	})

	if err := reg.Register(days); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			days = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solves); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solves = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(saved); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			saved = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(stay); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stay = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{days: days, solves: solves, duration: duration, saved: saved, stay: stay}, nil
}

// RecordDayResult increments the day counter and observes duration and
// reclaimed stay time.
func (s *PromSink) RecordDayResult(ev coremetrics.DayResultEvent) error {
	status := ev.Status.String()
	s.days.WithLabelValues(status).Inc()
	s.duration.WithLabelValues(status).Observe(ev.Elapsed.Seconds())
	if ev.Improved {
		s.saved.Observe(float64(ev.SavedMinutes))
	}
	return nil
}

// RecordSolve counts stage attempts by outcome.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	outcome := "ok"
	if ev.Error != "" {
		outcome = "error"
	}
	s.solves.WithLabelValues(ev.Stage, outcome).Inc()
	return nil
}

// RecordStayStats observes the per-day mean stay.
func (s *PromSink) RecordStayStats(ev coremetrics.StayStatsEvent) error {
	if ev.Applicants > 0 {
		s.stay.Observe(ev.MeanStay)
	}
	return nil
}
