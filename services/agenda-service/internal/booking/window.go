package booking

import "time"

// Window is a half-open [Start, End) time interval.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open windows intersect:
// [s1,e1) overlaps [s2,e2) iff s1 < e2 && s2 < e1. Back-to-back windows do
// not overlap, so two services may be scheduled with zero gap between them.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Contains reports whether the instant falls inside the window.
func (w Window) Contains(at time.Time) bool {
	return !at.Before(w.Start) && at.Before(w.End)
}

// Blocking reports whether an appointment in this status still holds its
// time. Both spellings of cancelled appear in stored data and are synonyms;
// no-shows free the slot as well.
func Blocking(status string) bool {
	switch status {
	case "cancelled", "canceled", "no_show":
		return false
	default:
		return true
	}
}

// Booked is the conflict-relevant projection of an existing appointment.
type Booked struct {
	ID     string
	Window Window
	Status string
}

// HasOverlap reports whether the candidate window intersects any blocking
// appointment. The slot buffer deliberately plays no part here: it spaces the
// offered slots, it does not enforce a minimum gap between bookings.
func HasOverlap(candidate Window, existing []Booked) bool {
	for _, b := range existing {
		if !Blocking(b.Status) {
			continue
		}
		if candidate.Overlaps(b.Window) {
			return true
		}
	}
	return false
}
