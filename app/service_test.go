package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jayquinn/interview-scheduler-sub001/config"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
	"github.com/jayquinn/interview-scheduler-sub001/core/planner"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Plan: config.PlanConfig{
			Activities: []config.ActivityConfig{
				{Name: "Discussion", Mode: "batched", DurationMinutes: 30, RoomType: "group", MinCapacity: 3, MaxCapacity: 6},
				{Name: "Interview", Mode: "individual", DurationMinutes: 15, RoomType: "interview", MinCapacity: 1, MaxCapacity: 1},
			},
			Rooms: []planner.RoomTemplate{
				{Name: "Seminar", Type: "group", Capacity: 6},
				{Name: "Booth", Type: "interview", Capacity: 1, Count: 2},
			},
			Hours: config.HoursConfig{Start: "09:00", End: "18:00"},
			Rules: []config.RuleConfig{
				{Predecessor: "Discussion", Successor: "Interview", GapMinutes: 10},
			},
			GlobalGapMinutes: 5,
			BufferMinutes:    5,
			Days: []config.DayEntry{
				{Date: "2025-07-01", Jobs: map[string]int{"JOB01": 5}},
			},
		},
		Output: config.OutputConfig{
			SchedulePath: filepath.Join(dir, "schedule.json"),
			ReportPath:   filepath.Join(dir, "report.json"),
		},
		Logging: config.LoggingConfig{Level: "error"},
	}
	cfg.Scheduler.SetDefaults()
	return cfg
}

func TestService_RunWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, svc.RunID())

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, report.Status)

	type runDoc struct {
		RunID  string `json:"run_id"`
		Status string `json:"status"`
		Days   []struct {
			Date  string               `json:"date"`
			Items []model.ScheduleItem `json:"items"`
		} `json:"days"`
	}

	data, err := os.ReadFile(cfg.Output.SchedulePath)
	require.NoError(t, err)
	var doc runDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, svc.RunID(), doc.RunID)
	require.Equal(t, "success", doc.Status)
	require.Len(t, doc.Days, 1)
	require.NotEmpty(t, doc.Days[0].Items)

	// The report document carries the summary without the items. Decode
	// into a fresh value: reusing doc would keep the schedule's items when
	// the omitted field is absent from the report JSON.
	data, err = os.ReadFile(cfg.Output.ReportPath)
	require.NoError(t, err)
	var summary runDoc
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Len(t, summary.Days, 1)
	require.Empty(t, summary.Days[0].Items)
}

func TestService_RejectsBadPlan(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plan.Days[0].Date = "not-a-date"
	_, err := New(cfg)
	require.Error(t, err)
}
