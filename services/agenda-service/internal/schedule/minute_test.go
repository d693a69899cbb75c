package schedule

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	m, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if m != 570 {
		t.Fatalf("expected 570, got %d", m)
	}

	// Stored datetimes sometimes carry seconds; they must be dropped.
	m, err = ParseClock("14:05:59")
	if err != nil {
		t.Fatalf("ParseClock with seconds failed: %v", err)
	}
	if m != 845 {
		t.Fatalf("expected 845, got %d", m)
	}

	for _, bad := range []string{"", "9h30", "24:00", "12:60", "aa:bb"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseClockEndMidnight(t *testing.T) {
	m, err := ParseClockEnd("00:00")
	if err != nil {
		t.Fatalf("ParseClockEnd failed: %v", err)
	}
	if m != EndOfDay {
		t.Fatalf("expected end of day (1440), got %d", m)
	}

	m, err = ParseClockEnd("18:00")
	if err != nil {
		t.Fatalf("ParseClockEnd failed: %v", err)
	}
	if m != 1080 {
		t.Fatalf("expected 1080, got %d", m)
	}
}

func TestClockRendering(t *testing.T) {
	if got := Minute(570).Clock(); got != "09:30" {
		t.Fatalf("expected 09:30, got %s", got)
	}
	if got := Minute(5).Clock(); got != "00:05" {
		t.Fatalf("expected 00:05, got %s", got)
	}
	if got := EndOfDay.Clock(); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}

func TestMinuteAt(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)
	at := Minute(870).At(day, loc)
	if at.Hour() != 14 || at.Minute() != 30 {
		t.Fatalf("expected 14:30 local, got %s", at.Format("15:04"))
	}
	if MinuteOf(at) != 870 {
		t.Fatalf("expected round trip to 870, got %d", MinuteOf(at))
	}
}
