// Package export renders finished schedules in interchange formats for
// downstream tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// WriteJSON writes the schedule items to w in JSON format.
func WriteJSON(w io.Writer, items []model.ScheduleItem) error {
	enc := json.NewEncoder(w)
	return enc.Encode(items)
}

// DaySchedule pairs a date with its items for multi-day exports.
type DaySchedule struct {
	Date  string
	Items []model.ScheduleItem
}

// WriteCSV writes the schedule to w as CSV, one row per schedule item.
func WriteCSV(w io.Writer, days []DaySchedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "applicant_id", "job_code", "activity", "room", "start", "end"}); err != nil {
		return err
	}
	for _, d := range days {
		for _, it := range d.Items {
			rec := []string{
				d.Date,
				it.ApplicantID,
				it.JobCode,
				it.Activity,
				it.Room,
				it.Start.String(),
				it.End.String(),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
