package model

// PrecedenceRule orders two activities for every applicant required to do
// both. With Adjacent set the successor starts exactly Gap minutes after
// the predecessor ends; otherwise it starts at least max(Gap, global gap)
// minutes after.
type PrecedenceRule struct {
	Predecessor string
	Successor   string
	Gap         int // minutes
	Adjacent    bool
}

// EffectiveGap resolves the minimum gap under the day's global gap. For
// adjacent rules the gap is exact and the global gap does not apply.
func (r PrecedenceRule) EffectiveGap(globalGap int) int {
	if r.Adjacent {
		return r.Gap
	}
	if globalGap > r.Gap {
		return globalGap
	}
	return r.Gap
}
