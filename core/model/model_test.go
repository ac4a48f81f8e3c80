package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	c := Clock(9*60 + 5)
	if c.String() != "09:05" {
		t.Errorf("String = %q, want 09:05", c.String())
	}
	if c.Add(30) != Clock(9*60+35) {
		t.Errorf("Add(30) = %v", c.Add(30))
	}
	parsed, err := ParseClock("14:30")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != Clock(14*60+30) {
		t.Errorf("parsed %d", parsed)
	}
	for _, bad := range []string{"25:00", "12:75", "noon", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) accepted", bad)
		}
	}
}

func TestClockJSONRoundTrip(t *testing.T) {
	item := ScheduleItem{ApplicantID: "JOB01_001", JobCode: "JOB01", Activity: "Interview", Room: "Booth1", Start: 9 * 60, End: 9*60 + 15}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `"start":"09:00"`; !strings.Contains(string(data), want) {
		t.Errorf("json %s missing %s", data, want)
	}
	var back ScheduleItem
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != item {
		t.Errorf("round trip %+v != %+v", back, item)
	}
}

func TestWindow(t *testing.T) {
	w := Window{Start: 9 * 60, End: 18 * 60}
	if w.Minutes() != 540 {
		t.Errorf("Minutes = %d", w.Minutes())
	}
	if !w.Contains(9*60, 9*60+30) {
		t.Error("interval at window start rejected")
	}
	if w.Contains(17*60+50, 18*60+5) {
		t.Error("interval past window end accepted")
	}
}

func TestScheduleItemOverlaps(t *testing.T) {
	a := ScheduleItem{Start: 60, End: 120}
	if !a.Overlaps(ScheduleItem{Start: 90, End: 150}) {
		t.Error("intersecting intervals not detected")
	}
	if a.Overlaps(ScheduleItem{Start: 120, End: 150}) {
		t.Error("back-to-back intervals flagged as overlap")
	}
}

func TestEffectiveGap(t *testing.T) {
	cases := []struct {
		rule      PrecedenceRule
		globalGap int
		want      int
	}{
		{PrecedenceRule{Gap: 10}, 5, 10},
		{PrecedenceRule{Gap: 2}, 30, 30},
		{PrecedenceRule{Gap: 0, Adjacent: true}, 30, 0},
		{PrecedenceRule{Gap: 5, Adjacent: true}, 30, 5},
	}
	for i, c := range cases {
		if got := c.rule.EffectiveGap(c.globalGap); got != c.want {
			t.Errorf("case %d: got %d, want %d", i, got, c.want)
		}
	}
}

func TestFillerSeq(t *testing.T) {
	seq := &FillerSeq{}
	a := seq.Next("JOB01")
	b := seq.Next("JOB02")
	if a != "_filler_JOB01_001" || b != "_filler_JOB02_002" {
		t.Errorf("ids %q %q", a, b)
	}
	if !IsFillerID(a) || IsFillerID("JOB01_001") {
		t.Error("filler detection wrong")
	}
}

func TestSortItems_Canonical(t *testing.T) {
	items := []ScheduleItem{
		{ApplicantID: "b", JobCode: "J", Activity: "Y", Start: 60},
		{ApplicantID: "a", JobCode: "J", Activity: "X", Start: 60},
		{ApplicantID: "c", JobCode: "J", Activity: "X", Start: 30},
	}
	SortItems(items)
	if items[0].ApplicantID != "c" || items[1].ApplicantID != "a" || items[2].ApplicantID != "b" {
		t.Errorf("order %v", items)
	}
}

func TestDayConfigValidate(t *testing.T) {
	base := func() *DayConfig {
		return &DayConfig{
			Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			Jobs: map[string]int{"JOB01": 3},
			Activities: []Activity{
				{Name: "Interview", Mode: ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
			},
			Rooms: []Room{{Name: "Booth1", Type: "interview", Capacity: 1}},
			Hours: Window{Start: 9 * 60, End: 18 * 60},
		}
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	c := base()
	c.Hours = Window{Start: 18 * 60, End: 9 * 60}
	if err := c.Validate(); err == nil {
		t.Error("inverted window accepted")
	}

	c = base()
	c.Rooms = []Room{{Name: "Seminar", Type: "group", Capacity: 6}}
	if err := c.Validate(); err == nil {
		t.Error("activity without compatible room accepted")
	}

	c = base()
	c.Rules = []PrecedenceRule{{Predecessor: "Ghost", Successor: "Interview"}}
	if err := c.Validate(); err == nil {
		t.Error("rule with unknown activity accepted")
	}
}

func TestBuildApplicants(t *testing.T) {
	c := &DayConfig{
		Jobs: map[string]int{"JOB02": 2, "JOB01": 1},
		Activities: []Activity{
			{Name: "Interview", Mode: ModeIndividual, Duration: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
		},
		Rooms: []Room{{Name: "Booth1", Type: "interview", Capacity: 1}},
		Hours: Window{Start: 9 * 60, End: 18 * 60},
	}
	got := c.BuildApplicants()
	if len(got) != 3 {
		t.Fatalf("got %d applicants", len(got))
	}
	// Job codes ordered, ids numbered per job.
	if got[0].ID != "JOB01_001" || got[1].ID != "JOB02_001" || got[2].ID != "JOB02_002" {
		t.Errorf("ids %v %v %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if len(got[0].Activities) != 1 || got[0].Activities[0] != "Interview" {
		t.Errorf("activities %v", got[0].Activities)
	}
}

func TestRoomSuffix(t *testing.T) {
	if (Room{Name: "BoothA"}).Suffix() != "A" {
		t.Error("expected suffix A")
	}
	if (Room{Name: "Seminar1"}).Suffix() != "" {
		t.Error("expected no suffix for digit-terminated name")
	}
}
