package slotting

import (
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Interval is a half-open [Start,End) span of free time.
type Interval struct {
	Start model.Clock
	End   model.Clock
}

// FreeList tracks the free intervals of one resource (a room or an
// applicant), kept sorted and disjoint. Consumed spans are split out of the
// list rather than deleted, so the surrounding free time stays usable.
type FreeList struct {
	ivs []Interval
}

// NewFreeList returns a list covering the whole window.
func NewFreeList(w model.Window) *FreeList {
	return &FreeList{ivs: []Interval{{Start: w.Start, End: w.End}}}
}

// Subtract removes [start,end) from the free time, splitting intervals as
// needed.
func (f *FreeList) Subtract(start, end model.Clock) {
	if end <= start {
		return
	}
	var out []Interval
	for _, iv := range f.ivs {
		if end <= iv.Start || iv.End <= start {
			out = append(out, iv)
			continue
		}
		if iv.Start < start {
			out = append(out, Interval{Start: iv.Start, End: start})
		}
		if end < iv.End {
			out = append(out, Interval{Start: end, End: iv.End})
		}
	}
	f.ivs = out
}

// FreeAt reports whether [start,start+dur) is entirely free.
func (f *FreeList) FreeAt(start model.Clock, dur int) bool {
	end := start.Add(dur)
	for _, iv := range f.ivs {
		if start >= iv.Start && end <= iv.End {
			return true
		}
	}
	return false
}

// FirstFit returns the earliest start not before earliest that fits a span
// of dur minutes, aligned to the given step.
func (f *FreeList) FirstFit(earliest model.Clock, dur, step int) (model.Clock, bool) {
	for _, iv := range f.ivs {
		start := iv.Start
		if start < earliest {
			start = earliest
		}
		start = alignUp(start, step)
		if start.Add(dur) <= iv.End {
			return start, true
		}
	}
	return 0, false
}

// Intervals returns a copy of the current free intervals.
func (f *FreeList) Intervals() []Interval {
	out := make([]Interval, len(f.ivs))
	copy(out, f.ivs)
	return out
}

func alignUp(c model.Clock, step int) model.Clock {
	if step <= 1 {
		return c
	}
	rem := int(c) % step
	if rem == 0 {
		return c
	}
	return c.Add(step - rem)
}

// buildRoomFree computes per-room free lists: operating hours minus the
// fixed occupancy already committed by the batched stage.
func buildRoomFree(cfg *model.DayConfig, fixed []model.ScheduleItem) map[string]*FreeList {
	free := make(map[string]*FreeList, len(cfg.Rooms))
	for _, r := range cfg.Rooms {
		free[r.Name] = NewFreeList(cfg.Hours)
	}
	seen := make(map[model.RoomAssignment]bool)
	for _, it := range fixed {
		// Batched items repeat per member; subtract each slot once.
		key := model.RoomAssignment{Room: it.Room, Start: it.Start, End: it.End, Activity: it.Activity, GroupID: it.GroupID}
		if seen[key] {
			continue
		}
		seen[key] = true
		if fl, ok := free[it.Room]; ok {
			fl.Subtract(it.Start, it.End)
		}
	}
	return free
}

// buildApplicantFree computes per-applicant free lists from their fixed
// items.
func buildApplicantFree(cfg *model.DayConfig, applicants []model.Applicant, fixed []model.ScheduleItem) map[string]*FreeList {
	free := make(map[string]*FreeList, len(applicants))
	for _, a := range applicants {
		free[a.ID] = NewFreeList(cfg.Hours)
	}
	for _, it := range fixed {
		if fl, ok := free[it.ApplicantID]; ok {
			fl.Subtract(it.Start, it.End)
		}
	}
	return free
}

// sortApplicants orders applicants deterministically by job code then id.
func sortApplicants(applicants []model.Applicant) []model.Applicant {
	out := make([]model.Applicant, len(applicants))
	copy(out, applicants)
	sort.Slice(out, func(i, j int) bool {
		if out[i].JobCode != out[j].JobCode {
			return out[i].JobCode < out[j].JobCode
		}
		return out[i].ID < out[j].ID
	})
	return out
}
