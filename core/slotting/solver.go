package slotting

import (
	"context"
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Solver is Strategy B: an exact bounded search over grid-aligned starts
// and room choices. One task exists per (applicant, required non-batched
// activity); batched occupancy is injected as fixed intervals. The search
// enumerates placements chronologically, keeps the best total stay time
// found, and stops at the context deadline returning the best feasible
// solution. No feasible solution within the budget fails the stage.
type Solver struct {
	cfg *model.DayConfig
	log logger.Logger
}

// NewSolver returns an exact solver for the given day.
func NewSolver(cfg *model.DayConfig, log logger.Logger) *Solver {
	return &Solver{cfg: cfg, log: log}
}

type task struct {
	applicant model.Applicant
	activity  model.Activity
	rooms     []model.Room
	// rules into this task's activity that the same applicant's other
	// tasks or fixed items must satisfy
	rules []model.PrecedenceRule
}

type placement struct {
	start model.Clock
	end   model.Clock
	room  string
}

type searchState struct {
	tasks     []task
	placed    []placement
	ctx       context.Context
	cfg       *model.DayConfig
	fixedApp  map[string][]model.ScheduleItem // applicant -> fixed items
	fixedRoom map[string][]placement          // room -> fixed occupancy
	best      []placement
	bestCost  int
	nodes     int
	timedOut  bool
}

// Schedule solves the day's individual and parallel placements exactly.
func (s *Solver) Schedule(ctx context.Context, applicants []model.Applicant, fixed []model.ScheduleItem) ([]model.ScheduleItem, error) {
	tasks := s.buildTasks(applicants)
	if len(tasks) == 0 {
		return nil, nil
	}

	st := &searchState{
		tasks:     tasks,
		placed:    make([]placement, 0, len(tasks)),
		ctx:       ctx,
		cfg:       s.cfg,
		fixedApp:  model.ItemsByApplicant(fixed),
		fixedRoom: make(map[string][]placement),
		bestCost:  1 << 30,
	}
	seen := make(map[model.RoomAssignment]bool)
	for _, it := range fixed {
		key := model.RoomAssignment{Room: it.Room, Start: it.Start, End: it.End, Activity: it.Activity, GroupID: it.GroupID}
		if seen[key] {
			continue
		}
		seen[key] = true
		st.fixedRoom[it.Room] = append(st.fixedRoom[it.Room], placement{start: it.Start, end: it.End, room: it.Room})
	}

	st.search(0)

	if st.best == nil {
		if st.timedOut {
			return nil, model.ErrSolverTimeout
		}
		return nil, &model.PlacementError{
			Stage:  "individual",
			Reason: "exact search proved the remaining activities unplaceable",
		}
	}
	s.log.Debugw("exact solve finished", map[string]any{
		"nodes": st.nodes, "cost_minutes": st.bestCost, "timed_out": st.timedOut,
	})

	items := make([]model.ScheduleItem, len(tasks))
	for i, tk := range tasks {
		items[i] = model.ScheduleItem{
			ApplicantID: tk.applicant.ID,
			JobCode:     tk.applicant.JobCode,
			Activity:    tk.activity.Name,
			Room:        st.best[i].room,
			Start:       st.best[i].start,
			End:         st.best[i].end,
		}
	}
	model.SortItems(items)
	return items, nil
}

// buildTasks lists the (applicant, activity) pairs in deterministic order:
// applicants by job and id, activities topologically along the precedence
// rules (ties by catalog position) so predecessors are always placed
// before their successors.
func (s *Solver) buildTasks(applicants []model.Applicant) []task {
	ordered := sortApplicants(applicants)
	catalog := orderedActivities(s.cfg)
	var tasks []task
	for _, a := range ordered {
		for _, act := range catalog {
			if act.Mode == model.ModeBatched || !requires(a, act.Name) {
				continue
			}
			tasks = append(tasks, task{
				applicant: a,
				activity:  act,
				rooms:     s.cfg.RoomsByType(act.RoomType),
				rules:     s.cfg.RulesInto(a.JobCode, act.Name),
			})
		}
	}
	return tasks
}

// orderedActivities sorts the non-batched catalog topologically along the
// precedence rules, keeping catalog order among unordered peers. A cycle
// among non-batched rules falls back to plain catalog order; only batched
// cycles are a configuration error. Both strategies place activities in
// this order so a predecessor is always scheduled before its successor.
func orderedActivities(cfg *model.DayConfig) []model.Activity {
	var acts []model.Activity
	index := make(map[string]int)
	for _, a := range cfg.Activities {
		if a.Mode != model.ModeBatched {
			index[a.Name] = len(acts)
			acts = append(acts, a)
		}
	}
	indegree := make([]int, len(acts))
	successors := make(map[int][]int)
	for _, r := range cfg.Rules {
		pi, ok1 := index[r.Predecessor]
		si, ok2 := index[r.Successor]
		if !ok1 || !ok2 {
			continue
		}
		successors[pi] = append(successors[pi], si)
		indegree[si]++
	}
	var ready []int
	for i, deg := range indegree {
		if deg == 0 {
			ready = append(ready, i)
		}
	}
	var order []model.Activity
	for len(ready) > 0 {
		sort.Ints(ready)
		i := ready[0]
		ready = ready[1:]
		order = append(order, acts[i])
		for _, si := range successors[i] {
			indegree[si]--
			if indegree[si] == 0 {
				ready = append(ready, si)
			}
		}
	}
	if len(order) != len(acts) {
		return acts
	}
	return order
}

func (st *searchState) search(idx int) {
	st.nodes++
	if (st.nodes == 1 || st.nodes%64 == 0) && st.ctx.Err() != nil {
		st.timedOut = true
		return
	}
	if st.timedOut {
		return
	}
	if idx == len(st.tasks) {
		cost := st.totalStay()
		if cost < st.bestCost {
			st.bestCost = cost
			st.best = make([]placement, len(st.placed))
			copy(st.best, st.placed)
		}
		return
	}
	if st.lowerBound(idx) >= st.bestCost {
		return
	}

	tk := st.tasks[idx]
	lower, exact := st.startBounds(idx)
	first := alignUp(lower, Step)
	if exact {
		// An adjacent predecessor pins the start, aligned or not.
		first = lower
	}
	for t := first; t.Add(tk.activity.Duration) <= st.cfg.Hours.End; t = t.Add(Step) {
		if exact && t != lower {
			break
		}
		if !st.applicantFree(idx, t, tk.activity.Duration) {
			continue
		}
		for _, r := range tk.rooms {
			if !st.roomFree(idx, r, t, tk.activity.Duration) {
				continue
			}
			st.placed = append(st.placed, placement{start: t, end: t.Add(tk.activity.Duration), room: r.Name})
			st.search(idx + 1)
			st.placed = st.placed[:len(st.placed)-1]
			if st.timedOut {
				return
			}
		}
	}
}

// startBounds derives the earliest legal start of a task from precedence
// against already placed tasks and fixed items. An adjacent rule pins the
// start exactly.
func (st *searchState) startBounds(idx int) (model.Clock, bool) {
	tk := st.tasks[idx]
	lower := st.cfg.Hours.Start
	exact := false
	for _, rule := range tk.rules {
		var predEnd model.Clock = -1
		for j := 0; j < idx; j++ {
			other := st.tasks[j]
			if other.applicant.ID == tk.applicant.ID && other.activity.Name == rule.Predecessor {
				predEnd = st.placed[j].end
			}
		}
		if predEnd < 0 {
			for _, it := range st.fixedApp[tk.applicant.ID] {
				if it.Activity == rule.Predecessor && it.End > predEnd {
					predEnd = it.End
				}
			}
		}
		if predEnd < 0 {
			continue
		}
		start := predEnd.Add(rule.EffectiveGap(st.cfg.GlobalGap))
		if rule.Adjacent {
			exact = true
			lower = start
		} else if start > lower {
			lower = start
		}
	}
	return lower, exact
}

func (st *searchState) applicantFree(idx int, start model.Clock, dur int) bool {
	end := start.Add(dur)
	tk := st.tasks[idx]
	for _, it := range st.fixedApp[tk.applicant.ID] {
		if start < it.End && it.Start < end {
			return false
		}
	}
	for j := 0; j < idx; j++ {
		if st.tasks[j].applicant.ID != tk.applicant.ID {
			continue
		}
		p := st.placed[j]
		if start < p.end && p.start < end {
			return false
		}
	}
	return true
}

// roomFree checks room occupancy. Placements of the same parallel activity
// with an identical interval may stack in one room up to its capacity and
// the activity's occupancy bound.
func (st *searchState) roomFree(idx int, room model.Room, start model.Clock, dur int) bool {
	end := start.Add(dur)
	for _, p := range st.fixedRoom[room.Name] {
		if start < p.end && p.start < end {
			return false
		}
	}
	tk := st.tasks[idx]
	stacked := 1
	for j := 0; j < idx; j++ {
		p := st.placed[j]
		if p.room != room.Name || start >= p.end || p.start >= end {
			continue
		}
		other := st.tasks[j]
		sameBatch := tk.activity.Mode == model.ModeParallel &&
			other.activity.Name == tk.activity.Name &&
			p.start == start && p.end == end
		if !sameBatch {
			return false
		}
		stacked++
	}
	if stacked > 1 {
		limit := tk.activity.MaxCapacity
		if room.Capacity < limit {
			limit = room.Capacity
		}
		if stacked > limit {
			return false
		}
	}
	return true
}

// totalStay is the objective: the sum over applicants of the span from
// their first start to their last end, fixed items included.
func (st *searchState) totalStay() int {
	spans := make(map[string]Interval)
	update := func(id string, start, end model.Clock) {
		iv, ok := spans[id]
		if !ok {
			spans[id] = Interval{Start: start, End: end}
			return
		}
		if start < iv.Start {
			iv.Start = start
		}
		if end > iv.End {
			iv.End = end
		}
		spans[id] = iv
	}
	for id, items := range st.fixedApp {
		if model.IsFillerID(id) {
			continue
		}
		for _, it := range items {
			update(id, it.Start, it.End)
		}
	}
	for j := range st.placed {
		update(st.tasks[j].applicant.ID, st.placed[j].start, st.placed[j].end)
	}
	total := 0
	ids := make([]string, 0, len(spans))
	for id := range spans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		total += int(spans[id].End - spans[id].Start)
	}
	return total
}

// lowerBound underestimates the final cost of the current partial
// assignment: placed tasks and fixed items count fully, unplaced tasks
// count nothing.
func (st *searchState) lowerBound(idx int) int {
	spans := make(map[string]Interval)
	update := func(id string, start, end model.Clock) {
		iv, ok := spans[id]
		if !ok {
			spans[id] = Interval{Start: start, End: end}
			return
		}
		if start < iv.Start {
			iv.Start = start
		}
		if end > iv.End {
			iv.End = end
		}
		spans[id] = iv
	}
	for id, items := range st.fixedApp {
		if model.IsFillerID(id) {
			continue
		}
		for _, it := range items {
			update(id, it.Start, it.End)
		}
	}
	for j := 0; j < idx; j++ {
		update(st.tasks[j].applicant.ID, st.placed[j].start, st.placed[j].end)
	}
	total := 0
	for _, iv := range spans {
		total += int(iv.End - iv.Start)
	}
	return total
}
