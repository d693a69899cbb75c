package booking

import (
	"testing"
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/availability"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

func workingRule(t *testing.T) availability.Rule {
	t.Helper()
	start, err := schedule.ParseClock("09:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	end, err := schedule.ParseClock("19:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	breakStart, err := schedule.ParseClock("12:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	breakEnd, err := schedule.ParseClock("13:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return availability.Explicit(availability.Record{
		ProfessionalID: "p1",
		Weekday:        time.Monday,
		Start:          start,
		End:            end,
		BreakStart:     &breakStart,
		BreakEnd:       &breakEnd,
		Active:         true,
	})
}

func TestValidateAcceptsFreeSlot(t *testing.T) {
	// Monday, 14:00 current time; candidate 15:00 for a 30 minute service.
	now := at(14, 0)
	req := Request{ProfessionalID: "p1", Start: at(15, 0), Duration: 30 * time.Minute}

	rej := Validate(req, Snapshot{Now: now, Rule: workingRule(t)})
	if rej != nil {
		t.Fatalf("expected acceptance, got %s", rej.Reason)
	}
	w := req.Window()
	if !w.End.Equal(at(15, 30)) {
		t.Fatalf("expected window end 15:30, got %s", w.End.Format("15:04"))
	}
}

func TestValidateRejectsBreak(t *testing.T) {
	now := at(11, 0)
	req := Request{ProfessionalID: "p1", Start: at(12, 30), Duration: 30 * time.Minute}

	rej := Validate(req, Snapshot{Now: now, Rule: workingRule(t)})
	if rej == nil || rej.Reason != ReasonProfessionalOnBreak {
		t.Fatalf("expected %s, got %v", ReasonProfessionalOnBreak, rej)
	}
	if rej.Message != "profissional em pausa" {
		t.Fatalf("unexpected message %q", rej.Message)
	}
}

func TestValidateRejectsPastDay(t *testing.T) {
	// Candidate on the previous calendar day is past no matter the hour.
	now := at(9, 0)
	req := Request{ProfessionalID: "p1", Start: at(23, 0).AddDate(0, 0, -1), Duration: 30 * time.Minute}

	rej := Validate(req, Snapshot{Now: now, Rule: workingRule(t)})
	if rej == nil || rej.Reason != ReasonPastTimeSlot {
		t.Fatalf("expected %s, got %v", ReasonPastTimeSlot, rej)
	}
}

func TestValidateRejectsOffDuty(t *testing.T) {
	now := at(9, 0)
	req := Request{ProfessionalID: "p1", Start: at(20, 0), Duration: 30 * time.Minute}

	rej := Validate(req, Snapshot{Now: now, Rule: workingRule(t)})
	if rej == nil || rej.Reason != ReasonProfessionalOffDuty {
		t.Fatalf("expected %s, got %v", ReasonProfessionalOffDuty, rej)
	}
}

func TestValidateRejectsOccupied(t *testing.T) {
	now := at(9, 0)
	req := Request{ProfessionalID: "p1", Start: at(15, 0), Duration: 30 * time.Minute}
	snap := Snapshot{
		Now:  now,
		Rule: workingRule(t),
		Existing: []Booked{
			{ID: "a1", Window: Window{Start: at(15, 15), End: at(15, 45)}, Status: "pending"},
		},
	}

	rej := Validate(req, snap)
	if rej == nil || rej.Reason != ReasonSlotOccupied {
		t.Fatalf("expected %s, got %v", ReasonSlotOccupied, rej)
	}
}

func TestValidateShortCircuitOrder(t *testing.T) {
	// Past AND blocked: the past check wins because it runs first.
	now := at(14, 0)
	req := Request{ProfessionalID: "p1", Start: at(10, 0), Duration: 30 * time.Minute}
	snap := Snapshot{
		Now:  now,
		Rule: workingRule(t),
		Blocks: []Block{
			{ID: "b1", ProfessionalID: "p1", Window: Window{Start: at(9, 0), End: at(11, 0)}},
		},
	}

	rej := Validate(req, snap)
	if rej == nil || rej.Reason != ReasonPastTimeSlot {
		t.Fatalf("expected %s to win over %s, got %v", ReasonPastTimeSlot, ReasonSlotBlocked, rej)
	}

	// Same slot in the future reports the block.
	req.Start = at(10, 0).AddDate(0, 0, 7)
	snap.Blocks[0].Window = Window{Start: snap.Blocks[0].Window.Start.AddDate(0, 0, 7), End: snap.Blocks[0].Window.End.AddDate(0, 0, 7)}
	rej = Validate(req, snap)
	if rej == nil || rej.Reason != ReasonSlotBlocked {
		t.Fatalf("expected %s, got %v", ReasonSlotBlocked, rej)
	}
}

// Two sessions can snapshot the same free slot and both pass validation;
// nothing in this package serializes them. The storage layer's unique index
// on (professional_id, start_time) decides the race: the second insert fails
// with a conflict and surfaces as slot_occupied.
func TestValidateDoesNotSerializeConcurrentSnapshots(t *testing.T) {
	now := at(9, 0)
	req := Request{ProfessionalID: "p1", Start: at(15, 0), Duration: 30 * time.Minute}
	snap := Snapshot{Now: now, Rule: workingRule(t)}

	if rej := Validate(req, snap); rej != nil {
		t.Fatalf("first session: %v", rej)
	}
	if rej := Validate(req, snap); rej != nil {
		t.Fatalf("second session sees the same stale snapshot: %v", rej)
	}
}

func TestValidateMoveChecksTargetRule(t *testing.T) {
	// Moving an appointment between professionals revalidates against the
	// target's rule: the same slot that is free under p1's schedule is
	// off-duty under p2's inactive record.
	now := at(9, 0)
	req := Request{ProfessionalID: "p1", Start: at(15, 0), Duration: 30 * time.Minute}
	if rej := Validate(req, Snapshot{Now: now, Rule: workingRule(t)}); rej != nil {
		t.Fatalf("expected acceptance under p1, got %s", rej.Reason)
	}

	inactive := availability.Explicit(availability.Record{
		ProfessionalID: "p2",
		Weekday:        time.Monday,
		Active:         false,
	})
	req.ProfessionalID = "p2"
	rej := Validate(req, Snapshot{Now: now, Rule: inactive})
	if rej == nil || rej.Reason != ReasonProfessionalOffDuty {
		t.Fatalf("expected %s under p2, got %v", ReasonProfessionalOffDuty, rej)
	}
}
