package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jayquinn/interview-scheduler-sub001/core/dayrun"
	"github.com/jayquinn/interview-scheduler-sub001/core/metrics"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
)

func basePlan(dates ...time.Time) Plan {
	days := make([]DaySpec, len(dates))
	for i, d := range dates {
		days[i] = DaySpec{Date: d, Jobs: map[string]int{"JOB01": 6}}
	}
	return Plan{
		Activities: []model.Activity{
			{Name: "Discussion", Mode: model.ModeBatched, Duration: 30, RoomType: "group", MinCapacity: 3, MaxCapacity: 6},
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []RoomTemplate{
			{Name: "Seminar", Type: "group", Capacity: 6},
			{Name: "Booth", Type: "interview", Capacity: 1, Count: 2},
		},
		Hours: model.Window{Start: 9 * 60, End: 18 * 60},
		Rules: []model.PrecedenceRule{
			{Predecessor: "Discussion", Successor: "Interview", Gap: 10},
		},
		GlobalGap: 5,
		Buffer:    5,
		Days:      days,
	}
}

func date(day int) time.Time {
	return time.Date(2025, 7, day, 0, 0, 0, 0, time.UTC)
}

func TestMaterializeRooms(t *testing.T) {
	rooms, err := MaterializeRooms([]RoomTemplate{
		{Name: "Seminar", Type: "group", Capacity: 6},
		{Name: "Booth", Type: "interview", Capacity: 1, Count: 3},
	})
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	var names []string
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	want := []string{"Seminar", "BoothA", "BoothB", "BoothC"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("rooms %v, want %v", names, want)
	}
	if rooms[1].Suffix() != "A" || rooms[3].Suffix() != "C" {
		t.Errorf("suffixes %q %q, want A C", rooms[1].Suffix(), rooms[3].Suffix())
	}

	if _, err := MaterializeRooms([]RoomTemplate{{Name: "X", Type: "t", Capacity: 1, Count: 27}}); err == nil {
		t.Error("expected error for count beyond the alphabet")
	}
}

func TestPlanValidate(t *testing.T) {
	p := Plan{}
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty plan")
	}
	p = basePlan(date(1), date(1))
	if err := p.Validate(); err == nil {
		t.Error("expected error for duplicate dates")
	}
	p = basePlan(date(1))
	p.Days[0].Jobs = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error for day without jobs")
	}
}

func TestDayConfig_Overrides(t *testing.T) {
	p := basePlan(date(1))
	gap := 15
	hours := model.Window{Start: 10 * 60, End: 16 * 60}
	p.Days[0].GlobalGap = &gap
	p.Days[0].Hours = &hours

	cfg, err := p.DayConfig(p.Days[0])
	if err != nil {
		t.Fatalf("day config: %v", err)
	}
	if cfg.GlobalGap != 15 {
		t.Errorf("gap %d, want override 15", cfg.GlobalGap)
	}
	if cfg.Hours != hours {
		t.Errorf("hours %+v, want override %+v", cfg.Hours, hours)
	}
	if cfg.Buffer != 5 {
		t.Errorf("buffer %d, want inherited 5", cfg.Buffer)
	}
	if len(cfg.Rooms) != 3 {
		t.Errorf("got %d rooms, want 3 materialized", len(cfg.Rooms))
	}
}

func TestRun_AllDaysSucceed(t *testing.T) {
	p := New(basePlan(date(1), date(2)), dayrun.Config{}, logger.NopLogger{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Status != model.StatusSuccess {
		t.Fatalf("status %v, failed days %v", report.Status, report.FailedDates)
	}
	if report.TotalApplicants != 12 || report.TotalScheduled != 12 {
		t.Errorf("scheduled %d/%d, want 12/12", report.TotalScheduled, report.TotalApplicants)
	}
	if !report.Days[0].Date.Before(report.Days[1].Date) {
		t.Error("days not in ascending date order")
	}
}

func TestRun_PartialWhenOneDayInfeasible(t *testing.T) {
	plan := basePlan(date(1), date(2))
	// Second day's window is too short for any interview after the
	// discussion.
	bad := model.Window{Start: 9 * 60, End: 9*60 + 45}
	plan.Days[1].Hours = &bad
	p := New(plan, dayrun.Config{SolverBudget: 2 * time.Second}, logger.NopLogger{})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Status != model.StatusPartial {
		t.Fatalf("status %v, want partial", report.Status)
	}
	if len(report.FailedDates) != 1 || report.FailedDates[0] != "2025-07-02" {
		t.Errorf("failed dates %v, want [2025-07-02]", report.FailedDates)
	}
	if report.TotalScheduled != 6 {
		t.Errorf("scheduled %d, want 6", report.TotalScheduled)
	}
}

func TestRun_WorkersMatchSequential(t *testing.T) {
	plan := basePlan(date(1), date(2), date(3))
	seq := New(plan, dayrun.Config{}, logger.NopLogger{})
	seqReport, err := seq.Run(context.Background())
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}

	par := New(plan, dayrun.Config{}, logger.NopLogger{})
	par.SetWorkers(3)
	parReport, err := par.Run(context.Background())
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}
	if seqReport.Status != parReport.Status {
		t.Fatalf("statuses differ: %v vs %v", seqReport.Status, parReport.Status)
	}
	for i := range seqReport.Days {
		if !reflect.DeepEqual(seqReport.Days[i].Items, parReport.Days[i].Items) {
			t.Errorf("day %d items differ between sequential and parallel runs", i)
		}
	}
}

type failingSink struct{}

func (failingSink) RecordDayResult(metrics.DayResultEvent) error {
	return errors.New("sink unavailable")
}

func TestRun_SinkFailureDoesNotFailRun(t *testing.T) {
	p := New(basePlan(date(1)), dayrun.Config{}, logger.NopLogger{})
	p.SetSink(failingSink{})
	rep, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Status != model.StatusSuccess {
		t.Errorf("status %v, want success despite sink errors", rep.Status)
	}
}

func TestRun_RecordsMetrics(t *testing.T) {
	sink := metrics.NewMemorySink()
	p := New(basePlan(date(1)), dayrun.Config{}, logger.NopLogger{})
	p.SetSink(sink)
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	days := sink.Days()
	if len(days) != 1 {
		t.Fatalf("recorded %d day events, want 1", len(days))
	}
	if days[0].Status != model.StatusSuccess || days[0].Scheduled != 6 {
		t.Errorf("recorded event %+v", days[0])
	}
}
