package availability

import (
	"testing"
	"time"

	"github.com/navalha-app/navalha/services/agenda-service/internal/schedule"
)

func minute(clock string) schedule.Minute {
	m, err := schedule.ParseClock(clock)
	if err != nil {
		panic(err)
	}
	return m
}

func minutePtr(clock string) *schedule.Minute {
	m := minute(clock)
	return &m
}

func TestUnspecifiedAssumesWorking(t *testing.T) {
	r := Unspecified()
	for _, clock := range []string{"00:00", "03:15", "12:00", "23:59"} {
		if !r.WorkingAt(minute(clock)) {
			t.Fatalf("unspecified rule must be working at %s", clock)
		}
		if r.OnBreak(minute(clock)) {
			t.Fatalf("unspecified rule has no break, got break at %s", clock)
		}
	}
}

func TestInactiveNeverWorks(t *testing.T) {
	r := Explicit(Record{
		Start:      minute("09:00"),
		End:        minute("19:00"),
		BreakStart: minutePtr("12:00"),
		BreakEnd:   minutePtr("13:00"),
		Active:     false,
	})
	for _, clock := range []string{"09:00", "12:30", "18:59"} {
		if r.WorkingAt(minute(clock)) {
			t.Fatalf("inactive rule must not be working at %s", clock)
		}
		if r.OnBreak(minute(clock)) {
			t.Fatalf("inactive rule must not report a break at %s", clock)
		}
	}
}

func TestWorkingWindow(t *testing.T) {
	r := Explicit(Record{Start: minute("09:00"), End: minute("19:00"), Active: true})

	if r.WorkingAt(minute("08:59")) {
		t.Fatal("before start must not be working")
	}
	if !r.WorkingAt(minute("09:00")) {
		t.Fatal("start is inclusive")
	}
	if !r.WorkingAt(minute("18:59")) {
		t.Fatal("last minute before end must be working")
	}
	if r.WorkingAt(minute("19:00")) {
		t.Fatal("end is exclusive")
	}
}

func TestMidnightEndMeansEndOfDay(t *testing.T) {
	// End stored as 00:00 means the shift runs to the end of the day.
	r := Explicit(Record{Start: minute("14:00"), End: 0, Active: true})
	if !r.WorkingAt(minute("23:59")) {
		t.Fatal("23:59 must be inside a shift ending at midnight")
	}
	if r.WorkingAt(minute("13:59")) {
		t.Fatal("before start must not be working")
	}
}

func TestBreakContainment(t *testing.T) {
	r := Explicit(Record{
		Start:      minute("09:00"),
		End:        minute("19:00"),
		BreakStart: minutePtr("12:00"),
		BreakEnd:   minutePtr("13:00"),
		Active:     true,
	})

	cases := []struct {
		clock string
		want  bool
	}{
		{"11:59", false},
		{"12:00", true},
		{"12:59", true},
		{"13:00", false},
	}
	for _, tc := range cases {
		if got := r.OnBreak(minute(tc.clock)); got != tc.want {
			t.Fatalf("OnBreak(%s) = %v, want %v", tc.clock, got, tc.want)
		}
	}
}

func TestRosterResolution(t *testing.T) {
	roster := NewRoster([]Record{
		{ProfessionalID: "p1", Weekday: time.Monday, Start: minute("09:00"), End: minute("18:00"), Active: true},
		{ProfessionalID: "p1", Weekday: time.Tuesday, Active: false},
	})

	if !roster.Rule("p1", time.Monday).WorkingAt(minute("10:00")) {
		t.Fatal("explicit active record must apply")
	}
	if roster.Rule("p1", time.Tuesday).WorkingAt(minute("10:00")) {
		t.Fatal("explicit inactive record must apply")
	}
	// No record for Wednesday: assume available.
	if !roster.Rule("p1", time.Wednesday).WorkingAt(minute("10:00")) {
		t.Fatal("missing record must assume working")
	}
	// Unknown professional: assume available.
	if !roster.Rule("p2", time.Monday).WorkingAt(minute("10:00")) {
		t.Fatal("unknown professional must assume working")
	}
}
