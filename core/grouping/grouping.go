// Package grouping partitions each job's applicants into batched-activity
// groups within the activity's capacity bounds, padding with filler
// applicants where the headcount does not divide cleanly.
package grouping

import (
	"fmt"
	"sort"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Plan is the result of the group-count search for one job.
type Plan struct {
	GroupCount  int
	FillerCount int
}

// ComputePlan searches candidate group counts from ceil(total/maxCap)
// upward and picks the count needing the fewest fillers, ties broken by
// fewer groups. Every resulting group size lies in [minCap,maxCap] and the
// padded total equals total+FillerCount exactly.
func ComputePlan(total, minCap, maxCap int) (Plan, error) {
	if minCap > maxCap {
		return Plan{}, model.Configf("group capacity bounds inverted: min %d > max %d", minCap, maxCap)
	}
	if minCap < 1 {
		return Plan{}, model.Configf("group min capacity must be at least 1, got %d", minCap)
	}
	if total == 0 {
		return Plan{}, nil
	}
	if total < minCap {
		return Plan{GroupCount: 1, FillerCount: minCap - total}, nil
	}

	best := Plan{}
	found := false
	for count := (total + maxCap - 1) / maxCap; count <= total; count++ {
		fillers := 0
		if deficit := count*minCap - total; deficit > 0 {
			fillers = deficit
		}
		padded := total + fillers
		// Near-equal split: the largest group gets ceil(padded/count).
		if (padded+count-1)/count > maxCap {
			continue
		}
		if !found || fillers < best.FillerCount {
			best = Plan{GroupCount: count, FillerCount: fillers}
			found = true
		}
		if fillers >= minCap {
			// Adding more groups can only cost more fillers.
			break
		}
	}
	if !found {
		return Plan{}, model.Configf("no group count fits %d applicants into [%d,%d]", total, minCap, maxCap)
	}
	return best, nil
}

// FormGroups slices the stable-ordered real ids plus freshly minted filler
// ids into near-equal partitions. Sizes differ by at most one, with the
// extras going to the earliest groups.
func FormGroups(jobCode string, realIDs []string, plan Plan, seq *model.FillerSeq) []model.Group {
	if plan.GroupCount == 0 {
		return nil
	}
	ids := make([]string, 0, len(realIDs)+plan.FillerCount)
	ids = append(ids, realIDs...)
	sort.Strings(ids[:len(realIDs)])
	for i := 0; i < plan.FillerCount; i++ {
		ids = append(ids, seq.Next(jobCode))
	}

	total := len(ids)
	base := total / plan.GroupCount
	extra := total % plan.GroupCount
	groups := make([]model.Group, 0, plan.GroupCount)
	offset := 0
	for i := 0; i < plan.GroupCount; i++ {
		size := base
		if i < extra {
			size++
		}
		members := make([]string, size)
		copy(members, ids[offset:offset+size])
		offset += size
		groups = append(groups, model.Group{
			ID:      fmt.Sprintf("%s_G%02d", jobCode, i+1),
			JobCode: jobCode,
			Members: members,
		})
	}
	return groups
}

// BuildGroups runs the plan and formation for every job that requires at
// least one batched activity. extraFillers is the orchestrator's escalation
// hint: that many fillers are added on top of each job's baseline packing,
// then the padded total is re-packed, changing the group layout on retries.
func BuildGroups(cfg *model.DayConfig, applicants []model.Applicant, extraFillers int, seq *model.FillerSeq) ([]model.Group, error) {
	byJob := make(map[string][]string)
	for _, a := range applicants {
		byJob[a.JobCode] = append(byJob[a.JobCode], a.ID)
	}

	var groups []model.Group
	for _, job := range cfg.JobCodes() {
		ids := byJob[job]
		if len(ids) == 0 {
			continue
		}
		bounds, ok := batchedBounds(cfg, job)
		if !ok {
			continue
		}
		plan, err := ComputePlan(len(ids), bounds.min, bounds.max)
		if err != nil {
			return nil, err
		}
		if extraFillers > 0 {
			padded := len(ids) + plan.FillerCount + extraFillers
			plan, err = ComputePlan(padded, bounds.min, bounds.max)
			if err != nil {
				return nil, err
			}
			// The re-pack may demand further fillers of its own; the count
			// covers everything beyond the real headcount.
			plan.FillerCount += padded - len(ids)
		}
		groups = append(groups, FormGroups(job, ids, plan, seq)...)
	}
	return groups, nil
}

type capBounds struct{ min, max int }

// batchedBounds intersects the capacity bounds of every batched activity
// the job requires, since the same cohort performs all of them.
func batchedBounds(cfg *model.DayConfig, job string) (capBounds, bool) {
	b := capBounds{min: 0, max: 1 << 30}
	any := false
	for _, name := range cfg.ActivitiesFor(job) {
		a, ok := cfg.ActivityByName(name)
		if !ok || a.Mode != model.ModeBatched {
			continue
		}
		any = true
		if a.MinCapacity > b.min {
			b.min = a.MinCapacity
		}
		if a.MaxCapacity < b.max {
			b.max = a.MaxCapacity
		}
	}
	return b, any
}
