package postopt

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jayquinn/interview-scheduler-sub001/core/model"
)

// Analyze computes the per-applicant stay view from a schedule, fillers
// excluded. Improvement potential is the largest gap between consecutive
// activities minus the fixed buffer, floored at zero.
func Analyze(items []model.ScheduleItem, gapBuffer int) []model.StayAnalysis {
	byApp := model.ItemsByApplicant(items)
	ids := make([]string, 0, len(byApp))
	for id := range byApp {
		if !model.IsFillerID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]model.StayAnalysis, 0, len(ids))
	for _, id := range ids {
		its := byApp[id]
		first := its[0].Start
		last := its[0].End
		largestGap := 0
		for i, it := range its {
			if it.Start < first {
				first = it.Start
			}
			if it.End > last {
				last = it.End
			}
			if i > 0 {
				if gap := int(it.Start - its[i-1].End); gap > largestGap {
					largestGap = gap
				}
			}
		}
		potential := largestGap - gapBuffer
		if potential < 0 {
			potential = 0
		}
		out = append(out, model.StayAnalysis{
			ApplicantID: id,
			JobCode:     its[0].JobCode,
			FirstStart:  first,
			LastEnd:     last,
			Stay:        int(last - first),
			Potential:   potential,
		})
	}
	return out
}

// problemThreshold derives the dynamic stay cutoff:
//
//	cutoff = max(floor, min(mean + 0.5*stddev, 30th percentile))
//
// where the 30th percentile is the value 70% of the population sits above
// (the boundary of the top 70%). An applicant is a problem case when their
// stay reaches both the cutoff and the 70th percentile (top 30%) and they
// have enough improvement potential. The dual absolute-plus-relative
// criterion stays meaningful across applicant counts and distributions.
func problemThreshold(analyses []model.StayAnalysis, floor int) (cutoff, relative float64) {
	stays := make([]float64, 0, len(analyses))
	for _, a := range analyses {
		stays = append(stays, float64(a.Stay))
	}
	sort.Float64s(stays)
	if len(stays) == 0 {
		return float64(floor), float64(floor)
	}
	if len(stays) < 2 {
		return float64(floor), stays[0]
	}
	mean := stat.Mean(stays, nil)
	std := stat.StdDev(stays, nil)
	if math.IsNaN(std) {
		std = 0
	}
	q30 := stat.Quantile(0.30, stat.Empirical, stays, nil)
	q70 := stat.Quantile(0.70, stat.Empirical, stays, nil)

	cutoff = mean + 0.5*std
	if q30 < cutoff {
		cutoff = q30
	}
	if f := float64(floor); f > cutoff {
		cutoff = f
	}
	return cutoff, q70
}

// problemCases filters the analyses to the ones worth moving groups for.
func problemCases(analyses []model.StayAnalysis, cfg Config) map[string]model.StayAnalysis {
	cutoff, relative := problemThreshold(analyses, cfg.StayFloor)
	bar := cutoff
	if relative > bar {
		bar = relative
	}
	out := make(map[string]model.StayAnalysis)
	for _, a := range analyses {
		if float64(a.Stay) >= bar && a.Potential > cfg.MinPotential {
			out[a.ApplicantID] = a
		}
	}
	return out
}
