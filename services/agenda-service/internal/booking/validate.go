package booking

import (
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/availability"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

// Request is a candidate booking or reschedule target. Start carries the
// business's location so day boundaries and "now" line up with the wall
// clock the staff sees.
type Request struct {
	ProfessionalID string
	Start          time.Time
	Duration       time.Duration
}

func (r Request) Window() Window {
	return Window{Start: r.Start, End: r.Start.Add(r.Duration)}
}

// Snapshot is everything validation needs, fetched once per attempt. The
// data is a point-in-time read of the store: between this snapshot and the
// final write another session may book the same slot, which is why the
// store additionally guards appointment inserts with a uniqueness constraint
// on (professional_id, start_time).
type Snapshot struct {
	Now      time.Time
	Rule     availability.Rule
	Blocks   []Block
	Existing []Booked
}

// Validate runs the checks in a fixed order and stops at the first failure,
// so a slot that is both past and blocked reports "past". Returns nil when
// the candidate is bookable.
func Validate(req Request, snap Snapshot) *Rejection {
	if req.Start.Before(snap.Now) {
		return rejectPast()
	}
	if FindBlock(snap.Blocks, req.ProfessionalID, req.Start) != nil {
		return rejectBlocked()
	}
	at := schedule.MinuteOf(req.Start)
	if !snap.Rule.WorkingAt(at) {
		return rejectOffDuty()
	}
	if snap.Rule.OnBreak(at) {
		return rejectOnBreak()
	}
	if HasOverlap(req.Window(), snap.Existing) {
		return rejectOccupied()
	}
	return nil
}
