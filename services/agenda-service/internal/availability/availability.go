// Package availability answers whether a professional works at a given time
// of day, based on their recurring weekly pattern.
package availability

import (
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

// Record is one professional's recurring pattern for one weekday.
type Record struct {
	ProfessionalID string
	Weekday        time.Weekday
	Start          schedule.Minute
	End            schedule.Minute // 0 means end-of-day (stored as 00:00)
	BreakStart     *schedule.Minute
	BreakEnd       *schedule.Minute
	Active         bool
}

// Rule is the resolved availability for a (professional, weekday) pair. The
// two cases are deliberately distinct: Unspecified means no record exists and
// the professional is assumed working all day — a business rule, not a gap.
// New professionals are bookable before anyone configures their schedule.
type Rule struct {
	record *Record
}

func Explicit(r Record) Rule {
	return Rule{record: &r}
}

func Unspecified() Rule {
	return Rule{}
}

// WorkingAt reports whether the professional works at the given time of day.
// Inactive records mean off all day regardless of their window.
func (r Rule) WorkingAt(m schedule.Minute) bool {
	if r.record == nil {
		return true
	}
	if !r.record.Active {
		return false
	}
	end := r.record.End
	if end == 0 {
		end = schedule.EndOfDay
	}
	return m >= r.record.Start && m < end
}

// OnBreak reports whether the time falls inside the configured break window.
// A day off has no meaningful break, and an unspecified rule has none either.
func (r Rule) OnBreak(m schedule.Minute) bool {
	if r.record == nil || !r.record.Active {
		return false
	}
	if r.record.BreakStart == nil || r.record.BreakEnd == nil {
		return false
	}
	return m >= *r.record.BreakStart && m < *r.record.BreakEnd
}

type rosterKey struct {
	professionalID string
	weekday        time.Weekday
}

// Roster is a point-in-time snapshot of availability records, fetched once
// per interaction and consulted for each candidate slot.
type Roster struct {
	rules map[rosterKey]Record
}

func NewRoster(records []Record) *Roster {
	rules := make(map[rosterKey]Record, len(records))
	for _, r := range records {
		rules[rosterKey{professionalID: r.ProfessionalID, weekday: r.Weekday}] = r
	}
	return &Roster{rules: rules}
}

// Rule resolves to Explicit when a record exists for the pair, Unspecified
// otherwise.
func (ro *Roster) Rule(professionalID string, weekday time.Weekday) Rule {
	if ro == nil {
		return Unspecified()
	}
	if r, ok := ro.rules[rosterKey{professionalID: professionalID, weekday: weekday}]; ok {
		return Explicit(r)
	}
	return Unspecified()
}
