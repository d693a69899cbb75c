package booking

import (
	"testing"
	"time"
)

func day() time.Time {
	return time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
}

func at(h, m int) time.Time {
	return day().Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestOverlapBackToBack(t *testing.T) {
	a := Window{Start: at(10, 0), End: at(10, 30)}
	b := Window{Start: at(10, 30), End: at(11, 0)}
	if a.Overlaps(b) || b.Overlaps(a) {
		t.Fatal("back-to-back windows must not overlap")
	}
}

func TestOverlapPartial(t *testing.T) {
	a := Window{Start: at(10, 0), End: at(10, 30)}
	b := Window{Start: at(10, 15), End: at(10, 45)}
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("partially intersecting windows must overlap both ways")
	}
}

func TestOverlapContained(t *testing.T) {
	outer := Window{Start: at(10, 0), End: at(11, 0)}
	inner := Window{Start: at(10, 15), End: at(10, 30)}
	if !outer.Overlaps(inner) || !inner.Overlaps(outer) {
		t.Fatal("contained window must overlap")
	}
}

func TestHasOverlapSkipsNonBlocking(t *testing.T) {
	candidate := Window{Start: at(10, 0), End: at(10, 30)}
	existing := []Booked{
		{ID: "a1", Window: Window{Start: at(10, 0), End: at(10, 30)}, Status: "cancelled"},
		{ID: "a2", Window: Window{Start: at(10, 0), End: at(10, 30)}, Status: "canceled"},
		{ID: "a3", Window: Window{Start: at(10, 0), End: at(10, 30)}, Status: "no_show"},
	}
	if HasOverlap(candidate, existing) {
		t.Fatal("cancelled, canceled and no_show must never block")
	}

	existing = append(existing, Booked{ID: "a4", Window: Window{Start: at(10, 15), End: at(10, 45)}, Status: "confirmed"})
	if !HasOverlap(candidate, existing) {
		t.Fatal("confirmed appointment must block")
	}
}

func TestBlockingStatuses(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "completed"} {
		if !Blocking(s) {
			t.Fatalf("status %q must block", s)
		}
	}
	for _, s := range []string{"cancelled", "canceled", "no_show"} {
		if Blocking(s) {
			t.Fatalf("status %q must not block", s)
		}
	}
}

func TestFindBlock(t *testing.T) {
	blocks := []Block{
		{ID: "b1", ProfessionalID: "p1", Window: Window{Start: at(12, 0), End: at(14, 0)}},
		{ID: "b2", ProfessionalID: "", Window: Window{Start: at(18, 0), End: at(19, 0)}},
	}

	if got := FindBlock(blocks, "p1", at(12, 0)); got == nil || got.ID != "b1" {
		t.Fatal("block start is inclusive")
	}
	if got := FindBlock(blocks, "p1", at(14, 0)); got != nil {
		t.Fatal("block end is exclusive")
	}
	if got := FindBlock(blocks, "p2", at(13, 0)); got != nil {
		t.Fatal("another professional's block must not match")
	}
	// Business-wide block (no professional) covers everyone.
	if got := FindBlock(blocks, "p2", at(18, 30)); got == nil || got.ID != "b2" {
		t.Fatal("business-wide block must match any professional")
	}
}
