// Package slotting places individual and parallel activities into the time
// and room capacity left over by the batched stage. A greedy heuristic is
// tried first; an exact bounded-search solver takes over when the heuristic
// cannot find a feasible placement.
package slotting

import (
	"fmt"
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Step is the scheduling grid in minutes. All individual and parallel
// starts are aligned to it.
const Step = 5

// Heuristic is Strategy A: first-fit placement over free intervals, with
// precedence-adjacent activity chains scheduled as indivisible units before
// standalone activities.
type Heuristic struct {
	cfg *model.DayConfig
	log logger.Logger
}

// NewHeuristic returns a heuristic scheduler for the given day.
func NewHeuristic(cfg *model.DayConfig, log logger.Logger) *Heuristic {
	return &Heuristic{cfg: cfg, log: log}
}

// chain is a run of activities linked by adjacent precedence rules, always
// scheduled as one unit per sub-group of applicants.
type chain struct {
	activities []model.Activity
	gaps       []int // gaps[i] separates activities[i] end from activities[i+1] start
}

func (c chain) span() int {
	total := 0
	for i, a := range c.activities {
		total += a.Duration
		if i < len(c.gaps) {
			total += c.gaps[i]
		}
	}
	return total
}

// offset returns the start offset of stage i relative to the chain start.
func (c chain) offset(i int) int {
	off := 0
	for j := 0; j < i; j++ {
		off += c.activities[j].Duration + c.gaps[j]
	}
	return off
}

// Schedule places every individual and parallel activity of every applicant
// into the remaining capacity. The fixed items are the batched stage's
// output and are treated as immovable occupancy. Failure here is expected
// and non-fatal; the caller falls back to the exact solver.
func (h *Heuristic) Schedule(applicants []model.Applicant, fixed []model.ScheduleItem) ([]model.ScheduleItem, error) {
	st := &state{
		cfg:      h.cfg,
		roomFree: buildRoomFree(h.cfg, fixed),
		appFree:  buildApplicantFree(h.cfg, applicants, fixed),
		placed:   model.ItemsByApplicant(fixed),
	}
	ordered := sortApplicants(applicants)

	chains, standalone := h.splitChains()
	for _, c := range chains {
		if err := h.scheduleChain(st, c, ordered); err != nil {
			return nil, err
		}
	}
	for _, a := range standalone {
		var err error
		switch a.Mode {
		case model.ModeIndividual:
			err = h.scheduleIndividual(st, a, ordered)
		case model.ModeParallel:
			err = h.scheduleParallel(st, a, ordered)
		case model.ModeBatched:
			// Already handled by the batched stage.
		}
		if err != nil {
			return nil, err
		}
	}
	if err := h.verifyPrecedence(st); err != nil {
		return nil, err
	}
	model.SortItems(st.out)
	return st.out, nil
}

// verifyPrecedence re-checks every rule against the final per-applicant
// placements, fixed items included. Greedy placement must never hand an
// order violation to the caller as a success; rejecting here routes the
// day to the exact solver instead.
func (h *Heuristic) verifyPrecedence(st *state) error {
	for id, items := range st.placed {
		if len(items) < 2 {
			continue
		}
		job := items[0].JobCode
		for _, succ := range items {
			for _, rule := range h.cfg.RulesInto(job, succ.Activity) {
				var predEnd model.Clock = -1
				for _, p := range items {
					if p.Activity == rule.Predecessor && p.End > predEnd {
						predEnd = p.End
					}
				}
				if predEnd < 0 {
					continue
				}
				want := predEnd.Add(rule.EffectiveGap(h.cfg.GlobalGap))
				bad := succ.Start < want || (rule.Adjacent && succ.Start != want)
				if bad {
					return &model.PlacementError{
						Stage:       "individual",
						Activity:    succ.Activity,
						ApplicantID: id,
						Reason: fmt.Sprintf("%s at %s breaks precedence after %s ending %s",
							succ.Activity, succ.Start, rule.Predecessor, predEnd),
					}
				}
			}
		}
	}
	return nil
}

type state struct {
	cfg      *model.DayConfig
	roomFree map[string]*FreeList
	appFree  map[string]*FreeList
	placed   map[string][]model.ScheduleItem
	out      []model.ScheduleItem
}

func (st *state) commit(it model.ScheduleItem, consumeRoom bool) {
	if consumeRoom {
		st.roomFree[it.Room].Subtract(it.Start, it.End)
	}
	st.appFree[it.ApplicantID].Subtract(it.Start, it.End)
	st.placed[it.ApplicantID] = append(st.placed[it.ApplicantID], it)
	st.out = append(st.out, it)
}

// splitChains partitions the non-batched activities into adjacency chains
// and standalone activities, chains ordered by head activity name and
// standalone activities in topological order along the precedence rules,
// so a rule's predecessor is always placed before its successor.
func (h *Heuristic) splitChains() ([]chain, []model.Activity) {
	nonBatched := make(map[string]model.Activity)
	for _, a := range h.cfg.Activities {
		if a.Mode != model.ModeBatched {
			nonBatched[a.Name] = a
		}
	}
	next := make(map[string]model.PrecedenceRule)
	hasPred := make(map[string]bool)
	for _, r := range h.cfg.Rules {
		if !r.Adjacent {
			continue
		}
		if _, ok := nonBatched[r.Predecessor]; !ok {
			continue
		}
		if _, ok := nonBatched[r.Successor]; !ok {
			continue
		}
		if _, dup := next[r.Predecessor]; !dup {
			next[r.Predecessor] = r
			hasPred[r.Successor] = true
		}
	}

	inChain := make(map[string]bool)
	var chains []chain
	var heads []string
	for name := range nonBatched {
		if _, linked := next[name]; linked && !hasPred[name] {
			heads = append(heads, name)
		}
	}
	sort.Strings(heads)
	for _, head := range heads {
		c := chain{activities: []model.Activity{nonBatched[head]}}
		inChain[head] = true
		for cur := head; ; {
			rule, ok := next[cur]
			if !ok {
				break
			}
			c.gaps = append(c.gaps, rule.Gap)
			c.activities = append(c.activities, nonBatched[rule.Successor])
			inChain[rule.Successor] = true
			cur = rule.Successor
		}
		chains = append(chains, c)
	}

	var standalone []model.Activity
	for _, a := range orderedActivities(h.cfg) {
		if !inChain[a.Name] {
			standalone = append(standalone, a)
		}
	}
	return chains, standalone
}

// unitSize bounds a chain sub-group so nobody finishes a stage with no room
// to continue into: a parallel stage caps it by occupancy and room size, an
// individual stage by the number of compatible rooms.
func (h *Heuristic) unitSize(c chain, remaining int) int {
	k := remaining
	for _, a := range c.activities {
		rooms := h.cfg.RoomsByType(a.RoomType)
		switch a.Mode {
		case model.ModeParallel:
			if a.MaxCapacity < k {
				k = a.MaxCapacity
			}
			maxRoom := 0
			for _, r := range rooms {
				if r.Capacity > maxRoom {
					maxRoom = r.Capacity
				}
			}
			if maxRoom < k {
				k = maxRoom
			}
		case model.ModeIndividual:
			if len(rooms) < k {
				k = len(rooms)
			}
		case model.ModeBatched:
			// Chains never contain batched activities.
		}
	}
	return k
}

func (h *Heuristic) scheduleChain(st *state, c chain, applicants []model.Applicant) error {
	var todo []model.Applicant
	for _, a := range applicants {
		if requiresAll(a, c) {
			todo = append(todo, a)
		}
	}
	for len(todo) > 0 {
		k := h.unitSize(c, len(todo))
		if k < 1 {
			return &model.PlacementError{
				Stage:    "individual",
				Activity: c.activities[0].Name,
				Reason:   "no capacity for adjacent activity chain",
			}
		}
		unit := todo[:k]
		if err := h.placeUnit(st, c, unit); err != nil {
			return err
		}
		todo = todo[k:]
	}
	return nil
}

// placeUnit finds the earliest chain start where every stage has rooms and
// every member is free, then commits all stages at exact adjacency offsets.
func (h *Heuristic) placeUnit(st *state, c chain, unit []model.Applicant) error {
	lower := h.cfg.Hours.Start
	for i := range c.activities {
		off := c.offset(i)
		for _, a := range unit {
			earliest, _ := h.earliestStart(st, a, c.activities[i].Name)
			if cand := earliest.Add(-off); cand > lower {
				lower = cand
			}
		}
	}

	span := c.span()
	for t := alignUp(lower, Step); t.Add(span) <= h.cfg.Hours.End; t = t.Add(Step) {
		rooms, ok := h.unitRoomsAt(st, c, unit, t)
		if !ok {
			continue
		}
		h.commitUnit(st, c, unit, t, rooms)
		return nil
	}
	return &model.PlacementError{
		Stage:    "individual",
		Activity: c.activities[0].Name,
		Reason:   "no window fits the adjacent activity chain",
	}
}

// unitRoomsAt resolves, per stage, the rooms used at chain start t, or
// reports infeasibility. Individual stages get one room per member in
// sorted order; parallel stages share the first room large enough.
func (h *Heuristic) unitRoomsAt(st *state, c chain, unit []model.Applicant, t model.Clock) ([][]string, bool) {
	rooms := make([][]string, len(c.activities))
	for i, act := range c.activities {
		start := t.Add(c.offset(i))
		end := start.Add(act.Duration)
		if !h.cfg.Hours.Contains(start, end) {
			return nil, false
		}
		for _, a := range unit {
			if !st.appFree[a.ID].FreeAt(start, act.Duration) {
				return nil, false
			}
		}
		switch act.Mode {
		case model.ModeParallel:
			room := ""
			for _, r := range h.cfg.RoomsByType(act.RoomType) {
				if r.Capacity >= len(unit) && st.roomFree[r.Name].FreeAt(start, act.Duration) {
					room = r.Name
					break
				}
			}
			if room == "" {
				return nil, false
			}
			rooms[i] = []string{room}
		case model.ModeIndividual:
			var avail []string
			for _, r := range h.cfg.RoomsByType(act.RoomType) {
				if st.roomFree[r.Name].FreeAt(start, act.Duration) {
					avail = append(avail, r.Name)
				}
				if len(avail) == len(unit) {
					break
				}
			}
			if len(avail) < len(unit) {
				return nil, false
			}
			rooms[i] = avail
		case model.ModeBatched:
			return nil, false
		}
	}
	return rooms, true
}

func (h *Heuristic) commitUnit(st *state, c chain, unit []model.Applicant, t model.Clock, rooms [][]string) {
	for i, act := range c.activities {
		start := t.Add(c.offset(i))
		end := start.Add(act.Duration)
		switch act.Mode {
		case model.ModeParallel:
			room := rooms[i][0]
			st.roomFree[room].Subtract(start, end)
			for _, a := range unit {
				st.commit(model.ScheduleItem{
					ApplicantID: a.ID, JobCode: a.JobCode, Activity: act.Name,
					Room: room, Start: start, End: end,
				}, false)
			}
		case model.ModeIndividual:
			for j, a := range unit {
				st.commit(model.ScheduleItem{
					ApplicantID: a.ID, JobCode: a.JobCode, Activity: act.Name,
					Room: rooms[i][j], Start: start, End: end,
				}, true)
			}
		case model.ModeBatched:
			// Unreachable; chains never contain batched activities.
		}
	}
}

func (h *Heuristic) scheduleIndividual(st *state, act model.Activity, applicants []model.Applicant) error {
	for _, a := range applicants {
		if !requires(a, act.Name) {
			continue
		}
		earliest, exact := h.earliestStart(st, a, act.Name)
		bestRoom := ""
		bestStart := model.Clock(-1)
		if exact {
			// An adjacent predecessor pins the start; a busy pinned slot
			// fails the placement rather than sliding later.
			if r, ok := h.pinnedRoom(st, a.ID, act, earliest); ok {
				bestRoom, bestStart = r, earliest
			}
		} else {
			for _, r := range h.cfg.RoomsByType(act.RoomType) {
				t, ok := h.firstCommonFit(st, r.Name, a.ID, earliest, act.Duration)
				if !ok {
					continue
				}
				if bestStart < 0 || t < bestStart {
					bestRoom, bestStart = r.Name, t
				}
			}
		}
		if bestStart < 0 {
			return &model.PlacementError{
				Stage:       "individual",
				Activity:    act.Name,
				ApplicantID: a.ID,
				Reason:      "no free room window before end of operating hours",
			}
		}
		st.commit(model.ScheduleItem{
			ApplicantID: a.ID, JobCode: a.JobCode, Activity: act.Name,
			Room: bestRoom, Start: bestStart, End: bestStart.Add(act.Duration),
		}, true)
	}
	return nil
}

// pinnedRoom finds a room free at the exact pinned start, or reports that
// the pin cannot be honored.
func (h *Heuristic) pinnedRoom(st *state, applicant string, act model.Activity, start model.Clock) (string, bool) {
	if !h.cfg.Hours.Contains(start, start.Add(act.Duration)) {
		return "", false
	}
	if !st.appFree[applicant].FreeAt(start, act.Duration) {
		return "", false
	}
	for _, r := range h.cfg.RoomsByType(act.RoomType) {
		if st.roomFree[r.Name].FreeAt(start, act.Duration) {
			return r.Name, true
		}
	}
	return "", false
}

func (h *Heuristic) scheduleParallel(st *state, act model.Activity, applicants []model.Applicant) error {
	var todo []model.Applicant
	for _, a := range applicants {
		if requires(a, act.Name) {
			todo = append(todo, a)
		}
	}
	for len(todo) > 0 {
		lead := todo[0]
		earliest, exact := h.earliestStart(st, lead, act.Name)
		bestRoom := ""
		bestStart := model.Clock(-1)
		bestCap := 0
		for _, r := range h.cfg.RoomsByType(act.RoomType) {
			var t model.Clock
			var ok bool
			if exact {
				t, ok = earliest, st.roomFree[r.Name].FreeAt(earliest, act.Duration) &&
					st.appFree[lead.ID].FreeAt(earliest, act.Duration) &&
					h.cfg.Hours.Contains(earliest, earliest.Add(act.Duration))
			} else {
				t, ok = h.firstCommonFit(st, r.Name, lead.ID, earliest, act.Duration)
			}
			if !ok {
				continue
			}
			if bestStart < 0 || t < bestStart {
				bestRoom, bestStart, bestCap = r.Name, t, r.Capacity
			}
		}
		if bestStart < 0 {
			return &model.PlacementError{
				Stage:       "individual",
				Activity:    act.Name,
				ApplicantID: lead.ID,
				Reason:      "no free room window before end of operating hours",
			}
		}

		limit := act.MaxCapacity
		if bestCap < limit {
			limit = bestCap
		}
		batch := []model.Applicant{lead}
		for _, a := range todo[1:] {
			if len(batch) == limit {
				break
			}
			min, pinned := h.earliestStart(st, a, act.Name)
			if pinned && min != bestStart {
				continue
			}
			if min <= bestStart && st.appFree[a.ID].FreeAt(bestStart, act.Duration) {
				batch = append(batch, a)
			}
		}

		end := bestStart.Add(act.Duration)
		st.roomFree[bestRoom].Subtract(bestStart, end)
		inBatch := make(map[string]bool, len(batch))
		for _, a := range batch {
			inBatch[a.ID] = true
			st.commit(model.ScheduleItem{
				ApplicantID: a.ID, JobCode: a.JobCode, Activity: act.Name,
				Room: bestRoom, Start: bestStart, End: end,
			}, false)
		}
		var rest []model.Applicant
		for _, a := range todo {
			if !inBatch[a.ID] {
				rest = append(rest, a)
			}
		}
		todo = rest
	}
	return nil
}

// earliestStart derives the minimum start of an activity for one applicant
// from the precedence rules whose predecessor the applicant has already
// been scheduled for. The second result reports whether an adjacent rule
// pins the start exactly.
func (h *Heuristic) earliestStart(st *state, a model.Applicant, activity string) (model.Clock, bool) {
	earliest := h.cfg.Hours.Start
	exact := false
	for _, rule := range h.cfg.RulesInto(a.JobCode, activity) {
		for _, it := range st.placed[a.ID] {
			if it.Activity != rule.Predecessor {
				continue
			}
			start := it.End.Add(rule.EffectiveGap(h.cfg.GlobalGap))
			if start > earliest {
				earliest = start
			}
			if rule.Adjacent {
				exact = true
			}
		}
	}
	return earliest, exact
}

// firstCommonFit finds the earliest aligned start in the intersection of a
// room's and an applicant's free time.
func (h *Heuristic) firstCommonFit(st *state, room, applicant string, earliest model.Clock, dur int) (model.Clock, bool) {
	for t := alignUp(earliest, Step); t.Add(dur) <= h.cfg.Hours.End; t = t.Add(Step) {
		if st.roomFree[room].FreeAt(t, dur) && st.appFree[applicant].FreeAt(t, dur) {
			return t, true
		}
	}
	return 0, false
}

func requires(a model.Applicant, activity string) bool {
	for _, name := range a.Activities {
		if name == activity {
			return true
		}
	}
	return false
}

func requiresAll(a model.Applicant, c chain) bool {
	for _, act := range c.activities {
		if !requires(a, act.Name) {
			return false
		}
	}
	return true
}
