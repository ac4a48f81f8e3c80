package model

// Group is a fixed cohort of applicants (real and filler) that performs
// every shared batched activity together. Membership is formed once per job
// code and reused verbatim across activities; room and time are attached
// through separate RoomAssignment values, never stored on the group.
type Group struct {
	ID      string
	JobCode string
	Members []string
}

// Size returns the member count including fillers.
func (g Group) Size() int { return len(g.Members) }

// RealSize returns the member count excluding fillers.
func (g Group) RealSize() int {
	n := 0
	for _, id := range g.Members {
		if !IsFillerID(id) {
			n++
		}
	}
	return n
}
