package handlers

import (
	"context"
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/availability"
	"github.com/navalha-app/navalha/services/agenda-service/internal/booking"
	"github.com/navalha-app/navalha/services/agenda-service/internal/model"
	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

// dayContext is one professional's calendar day resolved against the
// business's configured timezone. All validation reads come from here.
type dayContext struct {
	loc      *time.Location
	day      time.Time // midnight, business local
	buffer   int
	open     bool
	hours    schedule.DayHours
	rule     availability.Rule
	blocks   []booking.Block
	existing []booking.Booked

	nowFn func() time.Time // tests pin the clock
}

func (d *dayContext) now() time.Time {
	if d.nowFn != nil {
		return d.nowFn()
	}
	return time.Now().In(d.loc)
}

func (d *dayContext) snapshot() booking.Snapshot {
	return booking.Snapshot{
		Now:      d.now(),
		Rule:     d.rule,
		Blocks:   d.blocks,
		Existing: d.existing,
	}
}

func (h *AgendaHandler) resolveLocation(ctx context.Context, businessID string) (*time.Location, int, error) {
	tz := h.defaultTZ
	buffer := h.defaultBuffer
	profile, ok, err := h.repo.GetBusinessProfile(ctx, businessID)
	if err != nil {
		return nil, 0, err
	}
	if ok {
		if profile.Timezone != "" {
			tz = profile.Timezone
		}
		if profile.SlotBuffer > 0 {
			buffer = profile.SlotBuffer
		}
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		// A bad cached timezone must not take bookings down.
		h.logger.Warn("invalid business timezone, using default", "business_id", businessID, "tz", tz)
		loc, err = time.LoadLocation(h.defaultTZ)
		if err != nil {
			return nil, 0, err
		}
	}
	return loc, buffer, nil
}

// loadBusinessDay fetches the parts of a calendar day shared by every
// professional: location, hours and blocks. Callers add the rule and the
// booked appointments for whichever professionals they care about.
func (h *AgendaHandler) loadBusinessDay(ctx context.Context, businessID, dateStr string) (*dayContext, error) {
	loc, buffer, err := h.resolveLocation(ctx, businessID)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return nil, errBadDate
	}
	dayEnd := day.AddDate(0, 0, 1)

	d := &dayContext{loc: loc, day: day, buffer: buffer}

	rows, err := h.repo.ListBusinessHours(ctx, businessID)
	if err != nil {
		return nil, err
	}
	week, err := weekHours(rows)
	if err != nil {
		return nil, err
	}
	if dh, ok := week.Resolve(day.Weekday()); ok {
		d.open = true
		d.hours = dh
	}

	blocks, err := h.repo.ListTimeBlocks(ctx, businessID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		d.blocks = append(d.blocks, booking.Block{
			ID:             b.ID,
			BusinessID:     b.BusinessID,
			ProfessionalID: b.ProfessionalID,
			Window:         booking.Window{Start: b.StartTime.In(loc), End: b.EndTime.In(loc)},
			Reason:         b.Reason,
			BlockType:      b.BlockType,
		})
	}

	return d, nil
}

// loadExisting projects one professional's booked appointments into the
// context. excludeID drops one appointment from the overlap set so a
// reschedule does not collide with itself.
func (h *AgendaHandler) loadExisting(ctx context.Context, d *dayContext, businessID, professionalID, excludeID string) error {
	appts, err := h.repo.ListBookedForDay(ctx, businessID, professionalID, d.day, d.day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	d.existing = d.existing[:0]
	for _, a := range appts {
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		d.existing = append(d.existing, booking.Booked{
			ID:     a.ID,
			Window: booking.Window{Start: a.StartTime.In(d.loc), End: a.EndTime.In(d.loc)},
			Status: a.Status,
		})
	}
	return nil
}

// loadDayContext fetches hours, the professional's rule, blocks and booked
// appointments for one local calendar day in a handful of point reads.
func (h *AgendaHandler) loadDayContext(ctx context.Context, businessID, professionalID, dateStr, excludeID string) (*dayContext, error) {
	d, err := h.loadBusinessDay(ctx, businessID, dateStr)
	if err != nil {
		return nil, err
	}

	avail, found, err := h.repo.GetAvailability(ctx, professionalID, int(d.day.Weekday()))
	if err != nil {
		return nil, err
	}
	if !found {
		d.rule = availability.Unspecified()
	} else {
		rec, err := availabilityRecord(avail)
		if err != nil {
			return nil, err
		}
		d.rule = availability.Explicit(rec)
	}

	if err := h.loadExisting(ctx, d, businessID, professionalID, excludeID); err != nil {
		return nil, err
	}
	return d, nil
}

// loadRoster builds the availability roster for every professional on the
// context's weekday in a single read.
func (h *AgendaHandler) loadRoster(ctx context.Context, businessID string, weekday time.Weekday) (*availability.Roster, error) {
	avail, err := h.repo.ListWeekdayAvailability(ctx, businessID, int(weekday))
	if err != nil {
		return nil, err
	}
	records := make([]availability.Record, 0, len(avail))
	for _, a := range avail {
		rec, err := availabilityRecord(a)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return availability.NewRoster(records), nil
}

// weekHours folds the stored hour rows into the week map. Days without a
// row, and days explicitly marked closed, stay closed.
func weekHours(rows []model.BusinessHour) (*schedule.WeekHours, error) {
	var week schedule.WeekHours
	for _, hour := range rows {
		if hour.Closed {
			continue
		}
		open, err := schedule.ParseClock(hour.OpenTime)
		if err != nil {
			return nil, err
		}
		closeAt, err := schedule.ParseClockEnd(hour.CloseTime)
		if err != nil {
			return nil, err
		}
		week.SetOpen(time.Weekday(hour.Weekday), open, closeAt)
	}
	return &week, nil
}

func availabilityRecord(a model.ProfessionalAvailability) (availability.Record, error) {
	start, err := schedule.ParseClock(a.StartTime)
	if err != nil {
		return availability.Record{}, err
	}
	end, err := schedule.ParseClock(a.EndTime)
	if err != nil {
		return availability.Record{}, err
	}
	rec := availability.Record{
		ProfessionalID: a.ProfessionalID,
		Weekday:        time.Weekday(a.Weekday),
		Start:          start,
		End:            end,
		Active:         a.Active,
	}
	if a.BreakStart != nil && a.BreakEnd != nil {
		bs, err := schedule.ParseClock(*a.BreakStart)
		if err != nil {
			return availability.Record{}, err
		}
		be, err := schedule.ParseClock(*a.BreakEnd)
		if err != nil {
			return availability.Record{}, err
		}
		rec.BreakStart = &bs
		rec.BreakEnd = &be
	}
	return rec, nil
}
