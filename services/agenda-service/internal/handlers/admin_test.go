package handlers

import "testing"

func strPtr(s string) *string { return &s }

func TestValidateAvailabilityDay(t *testing.T) {
	cases := []struct {
		name string
		item availabilityItem
		want string
	}{
		{
			name: "valid without break",
			item: availabilityItem{Weekday: 1, StartTime: "09:00", EndTime: "19:00", Active: true},
		},
		{
			name: "valid with break",
			item: availabilityItem{
				Weekday: 1, StartTime: "09:00", EndTime: "19:00",
				BreakStart: strPtr("12:00"), BreakEnd: strPtr("13:00"),
			},
		},
		{
			name: "end at midnight",
			item: availabilityItem{Weekday: 5, StartTime: "14:00", EndTime: "00:00"},
		},
		{
			name: "weekday out of range",
			item: availabilityItem{Weekday: 7, StartTime: "09:00", EndTime: "19:00"},
			want: "weekday must be 0-6",
		},
		{
			name: "start after end",
			item: availabilityItem{Weekday: 1, StartTime: "19:00", EndTime: "09:00"},
			want: "start_time must be before end_time",
		},
		{
			name: "start equals end",
			item: availabilityItem{Weekday: 1, StartTime: "09:00", EndTime: "09:00"},
			want: "start_time must be before end_time",
		},
		{
			name: "break without end",
			item: availabilityItem{
				Weekday: 1, StartTime: "09:00", EndTime: "19:00",
				BreakStart: strPtr("12:00"),
			},
			want: "break_start and break_end must be set together",
		},
		{
			name: "break reversed",
			item: availabilityItem{
				Weekday: 1, StartTime: "09:00", EndTime: "19:00",
				BreakStart: strPtr("13:00"), BreakEnd: strPtr("12:00"),
			},
			want: "break_start must be before break_end",
		},
		{
			name: "break before window opens",
			item: availabilityItem{
				Weekday: 1, StartTime: "09:00", EndTime: "19:00",
				BreakStart: strPtr("08:00"), BreakEnd: strPtr("10:00"),
			},
			want: "break must fall within start_time and end_time",
		},
		{
			name: "break past window close",
			item: availabilityItem{
				Weekday: 1, StartTime: "09:00", EndTime: "19:00",
				BreakStart: strPtr("18:00"), BreakEnd: strPtr("20:00"),
			},
			want: "break must fall within start_time and end_time",
		},
		{
			name: "bad clock",
			item: availabilityItem{Weekday: 1, StartTime: "9am", EndTime: "19:00"},
			want: "invalid start_time, expected HH:mm",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateAvailabilityDay(tc.item); got != tc.want {
				t.Fatalf("validateAvailabilityDay = %q, want %q", got, tc.want)
			}
		})
	}
}
