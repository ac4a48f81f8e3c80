package slotting

import (
	"errors"
	"reflect"
	"testing"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/infra/logger"
)

func prepInterviewConfig() *model.DayConfig {
	return &model.DayConfig{
		Jobs: map[string]int{"J1": 2},
		Activities: []model.Activity{
			{Name: "Prep", Mode: model.ModeParallel, Duration: 5, RoomType: "prep", MinCapacity: 1, MaxCapacity: 4},
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{
			{Name: "PrepRoom", Type: "prep", Capacity: 4},
			{Name: "Booth1", Type: "interview", Capacity: 1},
		},
		Hours: model.Window{Start: 9 * 60, End: 18 * 60},
		Rules: []model.PrecedenceRule{
			{Predecessor: "Prep", Successor: "Interview", Gap: 0, Adjacent: true},
		},
		GlobalGap: 5,
	}
}

func TestHeuristic_AdjacentPairPerApplicant(t *testing.T) {
	cfg := prepInterviewConfig()
	applicants := cfg.BuildApplicants()
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(applicants, nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	byApp := model.ItemsByApplicant(items)
	if len(byApp) != 2 {
		t.Fatalf("got %d applicants scheduled, want 2", len(byApp))
	}
	for id, its := range byApp {
		if len(its) != 2 {
			t.Fatalf("applicant %s got %d items, want 2", id, len(its))
		}
		var prep, interview model.ScheduleItem
		for _, it := range its {
			switch it.Activity {
			case "Prep":
				prep = it
			case "Interview":
				interview = it
			}
		}
		if interview.Start != prep.End {
			t.Errorf("applicant %s: interview at %s, want exactly at own prep end %s", id, interview.Start, prep.End)
		}
	}
	// The single interview booth serializes the interviews.
	var interviews []model.ScheduleItem
	for _, it := range items {
		if it.Activity == "Interview" {
			interviews = append(interviews, it)
		}
	}
	if len(interviews) != 2 {
		t.Fatalf("got %d interviews, want 2", len(interviews))
	}
	if interviews[0].Overlaps(interviews[1]) {
		t.Errorf("interviews overlap in the single booth: %+v and %+v", interviews[0], interviews[1])
	}
}

func TestHeuristic_ExactFitWindow(t *testing.T) {
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 20, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{{Name: "Booth1", Type: "interview", Capacity: 1}},
		Hours: model.Window{Start: 9 * 60, End: 9*60 + 20},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(cfg.BuildApplicants(), nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Start != 9*60 || items[0].End != 9*60+20 {
		t.Errorf("got %s-%s, want 09:00-09:20", items[0].Start, items[0].End)
	}
}

func TestHeuristic_WindowOneMinuteShort(t *testing.T) {
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 20, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{{Name: "Booth1", Type: "interview", Capacity: 1}},
		Hours: model.Window{Start: 9 * 60, End: 9*60 + 19},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	_, err := h.Schedule(cfg.BuildApplicants(), nil)
	var place *model.PlacementError
	if !errors.As(err, &place) {
		t.Fatalf("got %v, want placement error", err)
	}
}

func TestHeuristic_StandaloneOrderFollowsRules(t *testing.T) {
	// Review precedes Intake in the catalog but must come after it per the
	// rule; placement order has to follow the rules, not the catalog.
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Review", Mode: model.ModeIndividual, Duration: 15, RoomType: "desk", MinCapacity: 1, MaxCapacity: 1},
			{Name: "Intake", Mode: model.ModeIndividual, Duration: 15, RoomType: "desk", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{{Name: "Desk1", Type: "desk", Capacity: 1}},
		Hours: model.Window{Start: 9 * 60, End: 12 * 60},
		Rules: []model.PrecedenceRule{
			{Predecessor: "Intake", Successor: "Review", Gap: 10},
		},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(cfg.BuildApplicants(), nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	var intake, review model.ScheduleItem
	for _, it := range items {
		switch it.Activity {
		case "Intake":
			intake = it
		case "Review":
			review = it
		}
	}
	if review.Start < intake.End.Add(10) {
		t.Errorf("review at %s starts before intake end %s plus 10m gap", review.Start, intake.End)
	}
}

func TestHeuristic_PinnedStartAfterBatchedUnavailable(t *testing.T) {
	// The adjacent rule pins the interview to the discussion's end. With the
	// only booth busy at that exact time the placement must fail, not slide
	// to a later start.
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Discussion", Mode: model.ModeBatched, Duration: 30, RoomType: "group", MinCapacity: 1, MaxCapacity: 6},
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{
			{Name: "Seminar", Type: "group", Capacity: 6},
			{Name: "Booth1", Type: "interview", Capacity: 1},
		},
		Hours: model.Window{Start: 9 * 60, End: 12 * 60},
		Rules: []model.PrecedenceRule{
			{Predecessor: "Discussion", Successor: "Interview", Gap: 0, Adjacent: true},
		},
	}
	fixed := []model.ScheduleItem{
		{ApplicantID: "J1_001", JobCode: "J1", Activity: "Discussion", Room: "Seminar", Start: 9 * 60, End: 9*60 + 30, GroupID: "J1_G01"},
		{ApplicantID: "J2_001", JobCode: "J2", Activity: "Hold", Room: "Booth1", Start: 9*60 + 30, End: 10 * 60},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	_, err := h.Schedule(cfg.BuildApplicants(), fixed)
	var place *model.PlacementError
	if !errors.As(err, &place) {
		t.Fatalf("got %v, want placement error for the occupied pinned slot", err)
	}
}

func TestHeuristic_PinnedStartAfterBatchedExact(t *testing.T) {
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Discussion", Mode: model.ModeBatched, Duration: 30, RoomType: "group", MinCapacity: 1, MaxCapacity: 6},
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{
			{Name: "Seminar", Type: "group", Capacity: 6},
			{Name: "Booth1", Type: "interview", Capacity: 1},
		},
		Hours: model.Window{Start: 9 * 60, End: 12 * 60},
		Rules: []model.PrecedenceRule{
			{Predecessor: "Discussion", Successor: "Interview", Gap: 5, Adjacent: true},
		},
	}
	fixed := []model.ScheduleItem{
		{ApplicantID: "J1_001", JobCode: "J1", Activity: "Discussion", Room: "Seminar", Start: 9 * 60, End: 9*60 + 30, GroupID: "J1_G01"},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(cfg.BuildApplicants(), fixed)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Start != 9*60+35 {
		t.Errorf("interview at %s, want exactly 09:35", items[0].Start)
	}
}

func TestHeuristic_ParallelBatchesUpToCapacity(t *testing.T) {
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 5},
		Activities: []model.Activity{
			{Name: "Briefing", Mode: model.ModeParallel, Duration: 10, RoomType: "hall", MinCapacity: 1, MaxCapacity: 3},
		},
		Rooms: []model.Room{{Name: "Hall", Type: "hall", Capacity: 10}},
		Hours: model.Window{Start: 9 * 60, End: 12 * 60},
	}
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(cfg.BuildApplicants(), nil)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	starts := make(map[model.Clock]int)
	for _, it := range items {
		starts[it.Start]++
	}
	if starts[9*60] != 3 {
		t.Errorf("first batch has %d applicants, want 3 (occupancy bound)", starts[9*60])
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
}

func TestHeuristic_RespectsFixedOccupancy(t *testing.T) {
	cfg := &model.DayConfig{
		Jobs: map[string]int{"J1": 1},
		Activities: []model.Activity{
			{Name: "Interview", Mode: model.ModeIndividual, Duration: 30, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []model.Room{{Name: "Booth1", Type: "interview", Capacity: 1}},
		Hours: model.Window{Start: 9 * 60, End: 12 * 60},
	}
	fixed := []model.ScheduleItem{{
		ApplicantID: "J1_001", JobCode: "J1", Activity: "Discussion",
		Room: "Booth1", Start: 9 * 60, End: 10 * 60, GroupID: "J1_G01",
	}}
	h := NewHeuristic(cfg, logger.NopLogger{})
	items, err := h.Schedule(cfg.BuildApplicants(), fixed)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Start < 10*60 {
		t.Errorf("interview at %s overlaps fixed occupancy until 10:00", items[0].Start)
	}
}

func TestHeuristic_Deterministic(t *testing.T) {
	cfg := prepInterviewConfig()
	run := func() []model.ScheduleItem {
		items, err := NewHeuristic(cfg, logger.NopLogger{}).Schedule(cfg.BuildApplicants(), nil)
		if err != nil {
			t.Fatalf("schedule: %v", err)
		}
		return items
	}
	if !reflect.DeepEqual(run(), run()) {
		t.Fatalf("identical input produced different schedules")
	}
}

func TestFreeList_SubtractSplits(t *testing.T) {
	fl := NewFreeList(model.Window{Start: 540, End: 1080})
	fl.Subtract(600, 660)
	ivs := fl.Intervals()
	want := []Interval{{Start: 540, End: 600}, {Start: 660, End: 1080}}
	if !reflect.DeepEqual(ivs, want) {
		t.Fatalf("got %v, want %v", ivs, want)
	}
	if fl.FreeAt(600, 30) {
		t.Errorf("consumed span reported free")
	}
	if !fl.FreeAt(660, 60) {
		t.Errorf("split remainder not free")
	}
}
