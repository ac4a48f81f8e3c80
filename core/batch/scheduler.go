// Package batch assigns a start time and room to every group for every
// batched activity, honoring precedence and keeping each job in rooms with
// a consistent suffix where possible.
package batch

import (
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/logger"
	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// EndKey identifies the completion time of one group's batched activity.
type EndKey struct {
	GroupID  string
	Activity string
}

// Result is the batched stage output: assignments, their per-member
// expansion into schedule items, and the end times later precedence checks
// read from.
type Result struct {
	Assignments []model.RoomAssignment
	Items       []model.ScheduleItem
	EndTimes    map[EndKey]model.Clock
}

// Scheduler places groups activity by activity in deterministic order:
// topological, then job code, then group index.
type Scheduler struct {
	cfg *model.DayConfig
	log logger.Logger
}

// New returns a batched scheduler for the given day.
func New(cfg *model.DayConfig, log logger.Logger) *Scheduler {
	return &Scheduler{cfg: cfg, log: log}
}

// Schedule assigns every (group, batched activity) pair. Any group that
// cannot be placed before the end of operating hours fails the whole stage
// so the orchestrator can back off and retry with different groups.
func (s *Scheduler) Schedule(groups []model.Group) (*Result, error) {
	order, err := SortActivities(s.cfg)
	if err != nil {
		return nil, err
	}

	sorted := make([]model.Group, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].JobCode != sorted[j].JobCode {
			return sorted[i].JobCode < sorted[j].JobCode
		}
		return sorted[i].ID < sorted[j].ID
	})

	res := &Result{EndTimes: make(map[EndKey]model.Clock)}
	roomFree := make(map[string]model.Clock) // room -> next free start
	for _, r := range s.cfg.Rooms {
		roomFree[r.Name] = s.cfg.Hours.Start
	}
	jobSuffix := make(map[string]string)

	for _, activity := range order {
		for _, g := range sorted {
			if !requiresActivity(s.cfg, g.JobCode, activity.Name) {
				continue
			}
			asn, err := s.placeGroup(activity, g, res.EndTimes, roomFree, jobSuffix)
			if err != nil {
				return nil, err
			}
			res.Assignments = append(res.Assignments, asn)
			res.EndTimes[EndKey{GroupID: g.ID, Activity: activity.Name}] = asn.End
			roomFree[asn.Room] = asn.End.Add(s.cfg.Buffer)
			if suffix := roomSuffix(asn.Room); suffix != "" {
				if _, seen := jobSuffix[g.JobCode]; !seen {
					jobSuffix[g.JobCode] = suffix
				}
			}
			for _, member := range g.Members {
				res.Items = append(res.Items, model.ScheduleItem{
					ApplicantID: member,
					JobCode:     g.JobCode,
					Activity:    activity.Name,
					Room:        asn.Room,
					Start:       asn.Start,
					End:         asn.End,
					GroupID:     g.ID,
				})
			}
			s.log.Debugf("placed %s/%s in %s at %s", g.ID, activity.Name, asn.Room, asn.Start)
		}
	}
	model.SortItems(res.Items)
	return res, nil
}

// placeGroup picks the room and start for one (group, activity) pair.
func (s *Scheduler) placeGroup(activity model.Activity, g model.Group, ends map[EndKey]model.Clock, roomFree map[string]model.Clock, jobSuffix map[string]string) (model.RoomAssignment, error) {
	earliest := s.cfg.Hours.Start
	exact := model.Clock(-1)
	for _, rule := range s.cfg.RulesInto(g.JobCode, activity.Name) {
		predEnd, done := ends[EndKey{GroupID: g.ID, Activity: rule.Predecessor}]
		if !done {
			continue
		}
		start := predEnd.Add(rule.EffectiveGap(s.cfg.GlobalGap))
		if rule.Adjacent {
			exact = start
		}
		if start > earliest {
			earliest = start
		}
	}

	preferred, rest := s.candidateRooms(activity, g, jobSuffix[g.JobCode])
	if len(preferred) == 0 && len(rest) == 0 {
		return model.RoomAssignment{}, &model.PlacementError{
			Stage:    "batched",
			Activity: activity.Name,
			GroupID:  g.ID,
			Reason:   "no room large enough for group",
		}
	}

	bestRoom, bestStart := s.pickRoom(preferred, activity, earliest, exact, roomFree)
	if bestStart < 0 {
		bestRoom, bestStart = s.pickRoom(rest, activity, earliest, exact, roomFree)
	}
	if bestStart < 0 {
		return model.RoomAssignment{}, &model.PlacementError{
			Stage:    "batched",
			Activity: activity.Name,
			GroupID:  g.ID,
			Reason:   "no room slot before end of operating hours",
		}
	}
	return model.RoomAssignment{
		GroupID:  g.ID,
		JobCode:  g.JobCode,
		Activity: activity.Name,
		Room:     bestRoom,
		Start:    bestStart,
		End:      bestStart.Add(activity.Duration),
	}, nil
}

// pickRoom selects the room offering the earliest feasible start, ties by
// name. A non-negative exact start pins the slot to that time.
func (s *Scheduler) pickRoom(rooms []model.Room, activity model.Activity, earliest, exact model.Clock, roomFree map[string]model.Clock) (string, model.Clock) {
	bestRoom := ""
	bestStart := model.Clock(-1)
	for _, r := range rooms {
		start := roomFree[r.Name]
		if start < earliest {
			start = earliest
		}
		if exact >= 0 {
			// An adjacent predecessor pins the start; the room must
			// already be free at that exact time.
			if roomFree[r.Name] > exact {
				continue
			}
			start = exact
		}
		if !s.cfg.Hours.Contains(start, start.Add(activity.Duration)) {
			continue
		}
		if bestStart < 0 || start < bestStart || (start == bestStart && r.Name < bestRoom) {
			bestRoom, bestStart = r.Name, start
		}
	}
	return bestRoom, bestStart
}

// candidateRooms splits the rooms of the activity's type with enough
// capacity into suffix-preferred and remaining tiers.
func (s *Scheduler) candidateRooms(activity model.Activity, g model.Group, suffix string) (preferred, rest []model.Room) {
	for _, r := range s.cfg.RoomsByType(activity.RoomType) {
		if r.Capacity < g.Size() {
			continue
		}
		if suffix != "" && roomSuffix(r.Name) == suffix {
			preferred = append(preferred, r)
		} else {
			rest = append(rest, r)
		}
	}
	return preferred, rest
}

func requiresActivity(cfg *model.DayConfig, job, activity string) bool {
	for _, name := range cfg.ActivitiesFor(job) {
		if name == activity {
			return true
		}
	}
	return false
}

func roomSuffix(name string) string {
	return model.Room{Name: name}.Suffix()
}
