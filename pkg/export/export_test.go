package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

func sampleItems() []model.ScheduleItem {
	return []model.ScheduleItem{
		{ApplicantID: "JOB01_001", JobCode: "JOB01", Activity: "Discussion", Room: "Seminar", Start: 9 * 60, End: 9*60 + 30, GroupID: "JOB01_G01"},
		{ApplicantID: "JOB01_001", JobCode: "JOB01", Activity: "Interview", Room: "Booth1", Start: 10 * 60, End: 10*60 + 15},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []DaySchedule{{Date: "2025-07-01", Items: sampleItems()}})
	if err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "date,applicant_id,job_code,activity,room,start,end" {
		t.Errorf("header %q", lines[0])
	}
	if lines[1] != "2025-07-01,JOB01_001,JOB01,Discussion,Seminar,09:00,09:30" {
		t.Errorf("row %q", lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleItems()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"applicant_id":"JOB01_001"`) || !strings.Contains(out, `"room":"Booth1"`) {
		t.Errorf("unexpected json: %s", out)
	}
}
