// Package postopt shrinks outlier stay times after a day's schedule is
// complete by relocating movable batched groups to later candidate slots.
// A pass is all-or-nothing: output that fails re-verification is discarded
// and the input schedule returned untouched, so the stage can never make a
// day worse.
package postopt

import (
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Config tunes the problem-case detection and the candidate search. Zero
// values mean the documented defaults.
type Config struct {
	// StayFloor is the absolute stay cutoff in minutes under which an
	// applicant is never a problem case.
	StayFloor int
	// MinPotential is the minimum improvement potential in minutes for an
	// applicant to count as a problem case.
	MinPotential int
	// GapBuffer is subtracted from the largest inter-activity gap when
	// estimating improvement potential.
	GapBuffer int
	// MaxMoves caps how many group relocations one pass may accept.
	MaxMoves int
	// CandidateSlots are the afternoon-anchored starts considered for
	// relocated groups, each aligned to Align minutes.
	CandidateSlots []model.Clock
	// Align is the rounding grid for shifted items.
	Align int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		StayFloor:    4 * 60,
		MinPotential: 30,
		GapBuffer:    30,
		MaxMoves:     6,
		CandidateSlots: []model.Clock{
			12 * 60, 12*60 + 30, 13 * 60, 13*60 + 30,
			14 * 60, 14*60 + 30, 15 * 60, 15*60 + 30, 16 * 60,
		},
		Align: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StayFloor == 0 {
		c.StayFloor = d.StayFloor
	}
	if c.MinPotential == 0 {
		c.MinPotential = d.MinPotential
	}
	if c.GapBuffer == 0 {
		c.GapBuffer = d.GapBuffer
	}
	if c.MaxMoves == 0 {
		c.MaxMoves = d.MaxMoves
	}
	if len(c.CandidateSlots) == 0 {
		c.CandidateSlots = d.CandidateSlots
	}
	if c.Align == 0 {
		c.Align = d.Align
	}
	return c
}

// Result is the outcome of one optimization pass.
type Result struct {
	Items        []model.ScheduleItem
	Assignments  []model.RoomAssignment
	Improved     bool
	MovedGroups  []string
	SavedMinutes int
	Analyses     []model.StayAnalysis
}

// Optimizer runs stay-time post-optimization for one day.
type Optimizer struct {
	day *model.DayConfig
	cfg Config
	log logger.Logger
}

// New returns an optimizer for the given day.
func New(day *model.DayConfig, cfg Config, log logger.Logger) *Optimizer {
	return &Optimizer{day: day, cfg: cfg.withDefaults(), log: log}
}

type move struct {
	asn      model.RoomAssignment
	newStart model.Clock
	delta    int
	estimate int
}

// Optimize runs one pass. It never fails: integrity problems in its own
// output cause the pass to be discarded and the input returned unchanged.
func (o *Optimizer) Optimize(items []model.ScheduleItem, assignments []model.RoomAssignment) *Result {
	analyses := Analyze(items, o.cfg.GapBuffer)
	unchanged := &Result{Items: items, Assignments: assignments, Analyses: analyses}

	if err := o.precheck(items, assignments); err != nil {
		o.log.Warnf("post-optimizer input failed integrity check, passing through: %v", err)
		return unchanged
	}

	problems := problemCases(analyses, o.cfg)
	if len(problems) == 0 {
		return unchanged
	}

	candidates := o.discover(items, assignments, problems)
	moves := o.selectMoves(items, assignments, candidates)
	if len(moves) == 0 {
		return unchanged
	}

	newItems, newAssignments := o.apply(items, assignments, moves)
	if err := o.precheck(newItems, newAssignments); err != nil {
		o.log.Warnf("post-optimizer output failed re-verification, discarding pass: %v", err)
		return unchanged
	}

	saved := 0
	movedIDs := make([]string, 0, len(moves))
	for _, m := range moves {
		saved += m.estimate
		movedIDs = append(movedIDs, m.asn.GroupID)
	}
	sort.Strings(movedIDs)
	o.log.Infof("post-optimizer moved %d groups, estimated %dm saved", len(moves), saved)
	return &Result{
		Items:        newItems,
		Assignments:  newAssignments,
		Improved:     true,
		MovedGroups:  movedIDs,
		SavedMinutes: saved,
		Analyses:     Analyze(newItems, o.cfg.GapBuffer),
	}
}

// precheck rejects schedules violating batched-group invariants: a group
// above its activity's occupancy bound, or two assignments sharing the
// exact (room, start, end) triple.
func (o *Optimizer) precheck(items []model.ScheduleItem, assignments []model.RoomAssignment) error {
	sizes := make(map[model.RoomAssignment]int)
	for _, it := range items {
		if it.GroupID == "" {
			continue
		}
		for _, asn := range assignments {
			if asn.GroupID == it.GroupID && asn.Activity == it.Activity {
				sizes[asn]++
			}
		}
	}
	for _, asn := range assignments {
		act, ok := o.day.ActivityByName(asn.Activity)
		if !ok {
			return &model.IntegrityError{Check: "catalog", Detail: "assignment for unknown activity " + asn.Activity}
		}
		if sizes[asn] > act.MaxCapacity {
			return &model.IntegrityError{
				Check:  "capacity",
				Detail: "group " + asn.GroupID + " exceeds occupancy bound of " + asn.Activity,
			}
		}
	}
	type triple struct {
		room       string
		start, end model.Clock
	}
	seen := make(map[triple]string)
	for _, asn := range assignments {
		k := triple{room: asn.Room, start: asn.Start, end: asn.End}
		if prev, dup := seen[k]; dup && prev != asn.GroupID {
			return &model.IntegrityError{
				Check:  "collision",
				Detail: "groups " + prev + " and " + asn.GroupID + " share a room slot",
			}
		}
		seen[k] = asn.GroupID
	}
	return nil
}

// discover proposes, for every assignment whose group contains a problem
// case, the earliest candidate slot strictly later than its current start
// that still fits before the end of operating hours.
func (o *Optimizer) discover(items []model.ScheduleItem, assignments []model.RoomAssignment, problems map[string]model.StayAnalysis) []move {
	members := make(map[string][]string) // group id -> problem member ids
	for _, it := range items {
		if it.GroupID == "" {
			continue
		}
		if _, ok := problems[it.ApplicantID]; ok {
			members[it.GroupID] = append(members[it.GroupID], it.ApplicantID)
		}
	}

	slots := make([]model.Clock, len(o.cfg.CandidateSlots))
	copy(slots, o.cfg.CandidateSlots)
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	var out []move
	for _, asn := range assignments {
		ids := dedupe(members[asn.GroupID])
		if len(ids) == 0 {
			continue
		}
		dur := int(asn.End - asn.Start)
		for _, slot := range slots {
			start := alignClock(slot, o.cfg.Align)
			if start <= asn.Start {
				continue
			}
			if start.Add(dur) > o.day.Hours.End {
				break
			}
			estimate := 0
			for _, id := range ids {
				estimate += problems[id].Potential
			}
			cand := move{
				asn:      asn,
				newStart: start,
				delta:    int(start - asn.Start),
				estimate: estimate,
			}
			// Slots colliding with the untouched schedule are skipped in
			// favor of the next later one.
			if o.collides(items, cand, nil) {
				continue
			}
			out = append(out, cand)
			break
		}
	}
	return out
}

// selectMoves ranks candidates by estimated improvement and accepts up to
// MaxMoves mutually compatible ones. A move is compatible when the shifted
// slot collides with nothing: not with the rest of the schedule, not with
// the members' other activities, not with precedence into or out of the
// moved activity, and not with previously accepted moves.
func (o *Optimizer) selectMoves(items []model.ScheduleItem, assignments []model.RoomAssignment, candidates []move) []move {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].estimate != candidates[j].estimate {
			return candidates[i].estimate > candidates[j].estimate
		}
		if candidates[i].asn.GroupID != candidates[j].asn.GroupID {
			return candidates[i].asn.GroupID < candidates[j].asn.GroupID
		}
		return candidates[i].asn.Activity < candidates[j].asn.Activity
	})

	var accepted []move
	for _, cand := range candidates {
		if len(accepted) == o.cfg.MaxMoves {
			break
		}
		if o.collides(items, cand, accepted) {
			continue
		}
		accepted = append(accepted, cand)
	}
	return accepted
}

func sameSlot(it model.ScheduleItem, asn model.RoomAssignment) bool {
	return it.GroupID == asn.GroupID && it.Activity == asn.Activity
}

// movedInterval returns where an item sits after the accepted moves.
// Moves shift time only; the room never changes.
func movedInterval(it model.ScheduleItem, moves []move) (model.Clock, model.Clock) {
	for _, m := range moves {
		if sameSlot(it, m.asn) {
			return it.Start.Add(m.delta), it.End.Add(m.delta)
		}
	}
	return it.Start, it.End
}

func (o *Optimizer) collides(items []model.ScheduleItem, cand move, accepted []move) bool {
	all := append(append([]move(nil), accepted...), cand)
	newStart := cand.newStart
	newEnd := cand.newStart.Add(int(cand.asn.End - cand.asn.Start))

	movedMembers := make(map[string]bool)
	for _, it := range items {
		if sameSlot(it, cand.asn) {
			movedMembers[it.ApplicantID] = true
		}
	}

	for _, it := range items {
		if sameSlot(it, cand.asn) {
			continue
		}
		start, end := movedInterval(it, all)
		if it.Room == cand.asn.Room && start < newEnd && newStart < end {
			return true
		}
		if movedMembers[it.ApplicantID] && start < newEnd && newStart < end {
			return true
		}
	}

	// Precedence around the moved activity must survive the shift.
	for id := range movedMembers {
		if o.breaksPrecedence(items, id, cand, all) {
			return true
		}
	}
	return false
}

// breaksPrecedence checks the rules touching the moved activity for one
// member against their other items after all accepted moves.
func (o *Optimizer) breaksPrecedence(items []model.ScheduleItem, applicantID string, cand move, moves []move) bool {
	shifted := make(map[string]Interval) // activity -> interval after moves
	for _, it := range items {
		if it.ApplicantID != applicantID {
			continue
		}
		start, end := movedInterval(it, moves)
		shifted[it.Activity] = Interval{start: start, end: end}
	}
	for _, rule := range o.day.Rules {
		pred, okP := shifted[rule.Predecessor]
		succ, okS := shifted[rule.Successor]
		if !okP || !okS {
			continue
		}
		if rule.Predecessor != cand.asn.Activity && rule.Successor != cand.asn.Activity {
			continue
		}
		gap := rule.EffectiveGap(o.day.GlobalGap)
		if rule.Adjacent {
			if succ.start != pred.end.Add(gap) {
				return true
			}
		} else if succ.start < pred.end.Add(gap) {
			return true
		}
	}
	return false
}

type Interval struct {
	start, end model.Clock
}

// apply produces the replacement schedule: every item of each moved slot is
// shifted by the slot's delta and rounded to the alignment grid, and the
// assignment collection is rebuilt wholesale.
func (o *Optimizer) apply(items []model.ScheduleItem, assignments []model.RoomAssignment, moves []move) ([]model.ScheduleItem, []model.RoomAssignment) {
	newItems := make([]model.ScheduleItem, len(items))
	for i, it := range items {
		start, end := movedInterval(it, moves)
		it.Start = roundClock(start, o.cfg.Align)
		it.End = roundClock(end, o.cfg.Align)
		newItems[i] = it
	}
	model.SortItems(newItems)

	newAssignments := make([]model.RoomAssignment, len(assignments))
	for i, asn := range assignments {
		for _, m := range moves {
			if m.asn == asn {
				asn.Start = roundClock(asn.Start.Add(m.delta), o.cfg.Align)
				asn.End = roundClock(asn.End.Add(m.delta), o.cfg.Align)
				break
			}
		}
		newAssignments[i] = asn
	}
	return newItems, newAssignments
}

func alignClock(c model.Clock, step int) model.Clock {
	if step <= 1 {
		return c
	}
	rem := int(c) % step
	if rem == 0 {
		return c
	}
	return c.Add(step - rem)
}

// roundClock rounds to the nearest grid point.
func roundClock(c model.Clock, step int) model.Clock {
	if step <= 1 {
		return c
	}
	rem := int(c) % step
	if rem*2 >= step {
		return c.Add(step - rem)
	}
	return c.Add(-rem)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
