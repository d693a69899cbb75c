package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Minute is a time of day expressed as minutes since midnight. Clock strings
// ("HH:mm", sometimes with a stray seconds component) are parsed into Minute
// at the API boundary; all scheduling arithmetic happens on this type so no
// string comparison survives past the edge.
type Minute int

// EndOfDay is the exclusive upper bound of a day. A closing or end time stored
// as "00:00" means end-of-day, not midnight at the start of the day.
const EndOfDay Minute = 24 * 60

// ParseClock parses "HH:mm" (or "HH:mm:ss"; the seconds are dropped) into a
// Minute in [0, 1440).
func ParseClock(s string) (Minute, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return Minute(h*60 + m), nil
}

// ParseClockEnd parses a window end. "00:00" is reinterpreted as EndOfDay so
// that ranges like 09:00-00:00 mean "open until midnight".
func ParseClockEnd(s string) (Minute, error) {
	m, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		return EndOfDay, nil
	}
	return m, nil
}

// Clock renders the zero-padded "HH:mm" form. EndOfDay renders as "00:00".
func (m Minute) Clock() string {
	v := int(m)
	if m == EndOfDay {
		v = 0
	}
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}

// At anchors the minute on a calendar day in the given location.
func (m Minute) At(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, int(m), 0, 0, loc)
}

// MinuteOf extracts the time of day from an instant, in that instant's location.
func MinuteOf(t time.Time) Minute {
	return Minute(t.Hour()*60 + t.Minute())
}
