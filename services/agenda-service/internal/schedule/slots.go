package schedule

// minStep guards against degenerate buffer values producing zero-advance
// loops; no business offers slots finer than five minutes.
const minStep = 5

// Slots generates the bookable start times for one day's open window, spaced
// by the buffer. The first slot is the open time rounded down to a buffer
// multiple so oddly aligned business hours do not shift the whole grid; the
// close time is exclusive, since a service starting exactly at close would
// always run past it.
func Slots(h DayHours, bufferMinutes int) []Minute {
	if bufferMinutes <= 0 || h.Open >= h.Close {
		return nil
	}

	step := Minute(bufferMinutes)
	if step < minStep {
		step = minStep
	}

	start := h.Open - h.Open%Minute(bufferMinutes)
	var slots []Minute
	for t := start; t < h.Close; t += step {
		slots = append(slots, t)
	}
	return slots
}
