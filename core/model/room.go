package model

// Room is a physical room available for scheduling on a given day.
type Room struct {
	Name     string
	Type     string
	Capacity int
}

// Suffix returns the trailing uppercase letter of the room name, if any.
// Rooms materialized from a template share a base name and differ only in
// this letter; jobs prefer to stay in rooms carrying the same suffix.
func (r Room) Suffix() string {
	if len(r.Name) < 2 {
		return ""
	}
	c := r.Name[len(r.Name)-1]
	if c >= 'A' && c <= 'Z' {
		return string(c)
	}
	return ""
}
