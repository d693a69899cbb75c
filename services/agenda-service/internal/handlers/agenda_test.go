package handlers

import (
	"testing"
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/availability"
	"github.com/navalha-app/navalha/services/agenda-service/internal/booking"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusNoShow, true},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusCompleted, false},
		{model.StatusNoShow, model.StatusCancelled, false},
		{model.StatusPending, model.StatusConfirmed, false},
	}
	for _, c := range cases {
		if got := transitionAllowed(c.from, c.to); got != c.want {
			t.Errorf("transitionAllowed(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestClockOnlyStripsSeconds(t *testing.T) {
	if got := clockOnly("09:00:00"); got != "09:00" {
		t.Fatalf("got %q", got)
	}
	if got := clockOnly("09:30"); got != "09:30" {
		t.Fatalf("got %q", got)
	}
	// Unparseable values pass through untouched.
	if got := clockOnly("not-a-time"); got != "not-a-time" {
		t.Fatalf("got %q", got)
	}
}

func TestAvailabilityRecordConversion(t *testing.T) {
	bs := "12:00:00"
	be := "13:00:00"
	rec, err := availabilityRecord(model.ProfessionalAvailability{
		ProfessionalID: "p1",
		Weekday:        1,
		StartTime:      "09:00:00",
		EndTime:        "19:00:00",
		BreakStart:     &bs,
		BreakEnd:       &be,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if rec.Weekday != time.Monday {
		t.Fatalf("weekday = %v", rec.Weekday)
	}
	if rec.Start.Clock() != "09:00" || rec.End.Clock() != "19:00" {
		t.Fatalf("window = %s-%s", rec.Start.Clock(), rec.End.Clock())
	}
	if rec.BreakStart == nil || rec.BreakStart.Clock() != "12:00" {
		t.Fatalf("break start = %v", rec.BreakStart)
	}
}

func TestAvailabilityRecordRejectsGarbage(t *testing.T) {
	_, err := availabilityRecord(model.ProfessionalAvailability{
		ProfessionalID: "p1",
		StartTime:      "25:00",
		EndTime:        "19:00",
	})
	if err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}

func TestTargetProfessional(t *testing.T) {
	if got := targetProfessional("p2", "p1"); got != "p2" {
		t.Fatalf("got %q, want p2", got)
	}
	if got := targetProfessional("", "p1"); got != "p1" {
		t.Fatalf("got %q, want p1", got)
	}
	if got := targetProfessional("  ", "p1"); got != "p1" {
		t.Fatalf("got %q, want p1", got)
	}
}

func mustClock(t *testing.T, s string) schedule.Minute {
	t.Helper()
	m, err := schedule.ParseClock(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return m
}

// Slot listing for the whole roster: a professional with an explicit rule
// loses break slots, one without any record is bookable all day, and booked
// slots disappear for the professional holding them only.
func TestFreeSlotsPerProfessional(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, 4, 6, 0, 0, 0, 0, loc) // a Monday

	breakStart := mustClock(t, "12:00")
	breakEnd := mustClock(t, "13:00")
	roster := availability.NewRoster([]availability.Record{{
		ProfessionalID: "p1",
		Weekday:        time.Monday,
		Start:          mustClock(t, "09:00"),
		End:            mustClock(t, "19:00"),
		BreakStart:     &breakStart,
		BreakEnd:       &breakEnd,
		Active:         true,
	}})

	d := &dayContext{
		loc:    loc,
		day:    day,
		buffer: 30,
		open:   true,
		hours:  schedule.DayHours{Open: mustClock(t, "09:00"), Close: mustClock(t, "19:00")},
		nowFn:  func() time.Time { return day.Add(8 * time.Hour) },
	}

	booked := booking.Booked{
		Window: booking.Window{
			Start: day.Add(15 * time.Hour),
			End:   day.Add(15*time.Hour + 30*time.Minute),
		},
		Status: model.StatusConfirmed,
	}

	d.rule = roster.Rule("p1", time.Monday)
	d.existing = []booking.Booked{booked}
	p1Slots := freeSlots(d, "p1", 30*time.Minute)
	// 20 half-hour slots, minus two on break, minus the booked 15:00.
	if len(p1Slots) != 17 {
		t.Fatalf("p1 slots = %d, want 17", len(p1Slots))
	}
	for _, s := range p1Slots {
		if s.StartTime == "12:00" || s.StartTime == "12:30" || s.StartTime == "15:00" {
			t.Fatalf("slot %s should not be offered to p1", s.StartTime)
		}
	}

	// p2 has no record: working all day, and p1's booking does not apply.
	d.rule = roster.Rule("p2", time.Monday)
	d.existing = nil
	p2Slots := freeSlots(d, "p2", 30*time.Minute)
	if len(p2Slots) != 20 {
		t.Fatalf("p2 slots = %d, want 20", len(p2Slots))
	}
}

func TestWeekHoursFold(t *testing.T) {
	week, err := weekHours([]model.BusinessHour{
		{Weekday: 1, OpenTime: "09:00:00", CloseTime: "19:00"},
		{Weekday: 2, OpenTime: "09:00", CloseTime: "19:00", Closed: true},
		{Weekday: 5, OpenTime: "10:00", CloseTime: "00:00"},
	})
	if err != nil {
		t.Fatalf("fold: %v", err)
	}

	dh, ok := week.Resolve(time.Monday)
	if !ok || dh.Open.Clock() != "09:00" || dh.Close.Clock() != "19:00" {
		t.Fatalf("monday = %+v ok=%v", dh, ok)
	}
	if _, ok := week.Resolve(time.Tuesday); ok {
		t.Fatal("tuesday marked closed must not resolve")
	}
	if _, ok := week.Resolve(time.Wednesday); ok {
		t.Fatal("missing wednesday row must not resolve")
	}
	dh, ok = week.Resolve(time.Friday)
	if !ok || dh.Close != schedule.EndOfDay {
		t.Fatalf("midnight close must map to end of day, got %+v ok=%v", dh, ok)
	}
}
