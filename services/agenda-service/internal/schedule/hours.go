package schedule

import "time"

// DayHours is one weekday's open window. Close is exclusive and may be
// EndOfDay for businesses that stay open until midnight.
type DayHours struct {
	Open  Minute
	Close Minute
}

// WeekHours maps weekdays to opening windows. A day without a window is
// closed; a business with no configuration at all is closed every day, so a
// missing hours setup can never offer slots.
type WeekHours struct {
	days [7]*DayHours
}

func (w *WeekHours) SetOpen(weekday time.Weekday, open, close Minute) {
	w.days[int(weekday)] = &DayHours{Open: open, Close: close}
}

func (w *WeekHours) SetClosed(weekday time.Weekday) {
	w.days[int(weekday)] = nil
}

// Resolve returns the open window for a weekday, or ok=false when closed.
func (w *WeekHours) Resolve(weekday time.Weekday) (DayHours, bool) {
	d := w.days[int(weekday)]
	if d == nil {
		return DayHours{}, false
	}
	return *d, true
}
