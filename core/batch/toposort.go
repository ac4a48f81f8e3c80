package batch

import (
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// SortActivities orders the day's batched activities topologically along
// the batched-to-batched precedence subgraph, ties broken by name. A cycle
// among batched activities is a configuration error; it is rejected rather
// than scheduling the remainder in name order.
func SortActivities(cfg *model.DayConfig) ([]model.Activity, error) {
	var batched []model.Activity
	isBatched := make(map[string]bool)
	for _, a := range cfg.Activities {
		if a.Mode == model.ModeBatched {
			batched = append(batched, a)
			isBatched[a.Name] = true
		}
	}

	indegree := make(map[string]int, len(batched))
	successors := make(map[string][]string)
	for _, a := range batched {
		indegree[a.Name] = 0
	}
	for _, r := range cfg.Rules {
		if !isBatched[r.Predecessor] || !isBatched[r.Successor] {
			continue
		}
		successors[r.Predecessor] = append(successors[r.Predecessor], r.Successor)
		indegree[r.Successor]++
	}

	var ready []string
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	var order []model.Activity
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		a, _ := cfg.ActivityByName(name)
		order = append(order, a)
		released := successors[name]
		sort.Strings(released)
		for _, succ := range released {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = insertSorted(ready, succ)
			}
		}
	}
	if len(order) != len(batched) {
		var stuck []string
		for name, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, model.Configf("precedence cycle among batched activities: %v", stuck)
	}
	return order, nil
}

func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
