package schedule

import (
	"testing"
	"time"
)

func TestSlotsDeterminism(t *testing.T) {
	h := DayHours{Open: 540, Close: 1140} // 09:00-19:00
	first := Slots(h, 30)
	second := Slots(h, 30)

	if len(first) != 20 {
		t.Fatalf("expected 20 slots, got %d", len(first))
	}
	if len(first) != len(second) {
		t.Fatalf("slot generation not deterministic: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs between runs: %d vs %d", i, first[i], second[i])
		}
	}
	if first[0] != 540 {
		t.Fatalf("expected first slot 09:00, got %s", first[0].Clock())
	}
	if last := first[len(first)-1]; last >= h.Close {
		t.Fatalf("last slot %s must be strictly before close", last.Clock())
	}
	for i := 1; i < len(first); i++ {
		if first[i] <= first[i-1] {
			t.Fatalf("slots not strictly ascending at %d", i)
		}
	}
}

func TestSlotsRoundsOpenDown(t *testing.T) {
	// 09:10 open with a 30 minute buffer keeps the grid on the half hour.
	slots := Slots(DayHours{Open: 550, Close: 720}, 30)
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if slots[0] != 540 {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Clock())
	}
}

func TestSlotsMidnightClose(t *testing.T) {
	// Open until midnight: slots run through 23:30 but never wrap into the
	// morning of the same day.
	h := DayHours{Open: 540, Close: EndOfDay}
	slots := Slots(h, 30)
	if len(slots) != 30 {
		t.Fatalf("expected 30 slots, got %d", len(slots))
	}
	if last := slots[len(slots)-1]; last != 1410 {
		t.Fatalf("expected last slot 23:30, got %s", last.Clock())
	}

	slots = Slots(h, 15)
	if last := slots[len(slots)-1]; last != 1425 {
		t.Fatalf("expected last slot 23:45, got %s", last.Clock())
	}
}

func TestSlotsDegenerateInputs(t *testing.T) {
	if got := Slots(DayHours{Open: 540, Close: 1140}, 0); got != nil {
		t.Fatalf("expected no slots for zero buffer, got %d", len(got))
	}
	if got := Slots(DayHours{Open: 540, Close: 1140}, -15); got != nil {
		t.Fatalf("expected no slots for negative buffer, got %d", len(got))
	}
	if got := Slots(DayHours{Open: 1140, Close: 540}, 30); got != nil {
		t.Fatalf("expected no slots for inverted hours, got %d", len(got))
	}
	if got := Slots(DayHours{Open: 540, Close: 540}, 30); got != nil {
		t.Fatalf("expected no slots for empty window, got %d", len(got))
	}
}

func TestSlotsMinimumStep(t *testing.T) {
	// A 1 minute buffer steps at the 5 minute floor instead of crawling.
	slots := Slots(DayHours{Open: 600, Close: 630}, 1)
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	if slots[1]-slots[0] != 5 {
		t.Fatalf("expected 5 minute step, got %d", slots[1]-slots[0])
	}
}

func TestWeekHoursResolve(t *testing.T) {
	var w WeekHours
	w.SetOpen(time.Monday, 540, 1140)

	d, ok := w.Resolve(time.Monday)
	if !ok {
		t.Fatal("expected Monday open")
	}
	if d.Open != 540 || d.Close != 1140 {
		t.Fatalf("unexpected hours %s-%s", d.Open.Clock(), d.Close.Clock())
	}

	if _, ok := w.Resolve(time.Sunday); ok {
		t.Fatal("unconfigured day must resolve as closed")
	}

	w.SetClosed(time.Monday)
	if _, ok := w.Resolve(time.Monday); ok {
		t.Fatal("explicitly closed day must resolve as closed")
	}
}
