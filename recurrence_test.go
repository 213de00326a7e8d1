package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func TestRecurrenceRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{
			name: "rule with exceptions",
			lines: []string{
				"DTSTART:20240101T090000Z",
				"RRULE:FREQ=DAILY;COUNT=5",
				"EXDATE:20240103T090000Z,20240104T090000Z",
			},
		},
		{
			name: "all day until",
			lines: []string{
				"DTSTART;VALUE=DATE:20240101",
				"RRULE:FREQ=WEEKLY;UNTIL=20240201;BYDAY=MO",
				"EXDATE;VALUE=DATE:20240108",
			},
		},
		{
			name: "floating until",
			lines: []string{
				"DTSTART:20240101T090000",
				"RRULE:FREQ=MONTHLY;UNTIL=20241201T090000;BYDAY=-1SU",
			},
		},
		{
			name: "dates and periods",
			lines: []string{
				"DTSTART:19970101T180000Z",
				"RDATE;VALUE=PERIOD:19970101T180000Z/PT5H30M,19970102T180000Z/19970102T200000Z",
				"RDATE;VALUE=DATE:19970704,19970705",
				"RDATE:19970714T123000Z",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := append([]string{"BEGIN:VEVENT", "UID:recur@example.com", "DTSTAMP:20240101T000000Z"}, tt.lines...)
			c := mustContainer(t, append(lines, "END:VEVENT")...)
			e, err := EventFromContainer(c)
			require.NoError(t, err)
			assert.False(t, e.Recurrence.IsZero())
			out, err := e.ToContainer()
			require.NoError(t, err)
			assert.Equal(t, c.String(), out.String())
		})
	}
}

func TestRecurrenceUntilFollowsStart(t *testing.T) {
	until := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	weekly := rrule.ROption{Freq: rrule.WEEKLY, Until: until}

	allDay := NewEvent("all-day")
	require.NoError(t, allDay.SetStartAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, allDay.SetAllDay())
	allDay.Recurrence.RRules = []rrule.ROption{weekly}
	assert.Contains(t, allDay.Serialize(fixedOps()...), "\r\nRRULE:FREQ=WEEKLY;UNTIL=20240201\r\n")

	floating := NewEvent("floating")
	require.NoError(t, floating.SetStartAt(time.Date(2024, 1, 1, 9, 0, 0, 0, Floating)))
	floating.Recurrence.RRules = []rrule.ROption{weekly}
	assert.Contains(t, floating.Serialize(fixedOps()...), "\r\nRRULE:FREQ=WEEKLY;UNTIL=20240201T090000\r\n")

	zoned := NewEvent("zoned")
	require.NoError(t, zoned.SetStartAt(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	zoned.Recurrence.RRules = []rrule.ROption{weekly}
	assert.Contains(t, zoned.Serialize(fixedOps()...), "\r\nRRULE:FREQ=WEEKLY;UNTIL=20240201T090000Z\r\n")
}

func TestRecurrenceSet(t *testing.T) {
	c := mustContainer(t,
		"BEGIN:VEVENT",
		"UID:set@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T090000Z",
		"RRULE:FREQ=DAILY;COUNT=5",
		"RDATE:20240110T090000Z",
		"EXDATE:20240103T090000Z,20240104T090000Z",
		"END:VEVENT",
	)
	e, err := EventFromContainer(c)
	require.NoError(t, err)
	set, err := e.Recurrence.Set(e.Begin())
	require.NoError(t, err)
	day := func(d int) time.Time { return time.Date(2024, 1, d, 9, 0, 0, 0, time.UTC) }
	got := set.All()
	require.Len(t, got, 4)
	for i, want := range []time.Time{day(1), day(2), day(5), day(10)} {
		assert.True(t, want.Equal(got[i]), "occurrence %d: got %v", i, got[i])
	}

	t.Run("all day exceptions", func(t *testing.T) {
		r := Recurrence{
			RRules:  []rrule.ROption{{Freq: rrule.DAILY, Count: 3}},
			ExDates: []RecurrenceDate{{Date: Date{Year: 2024, Month: time.January, Day: 2}}},
		}
		set, err := r.Set(Date{Year: 2024, Month: time.January, Day: 1}.Time())
		require.NoError(t, err)
		got := set.All()
		require.Len(t, got, 2)
		assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 3}, DateOf(got[1]))
	})

	t.Run("several rules", func(t *testing.T) {
		r := Recurrence{RRules: []rrule.ROption{{Freq: rrule.DAILY}, {Freq: rrule.WEEKLY}}}
		_, err := r.Set(day(1))
		assert.Error(t, err)
	})

	t.Run("no rule", func(t *testing.T) {
		r := Recurrence{RDates: []RecurrenceDate{{Time: day(3)}}}
		set, err := r.Set(day(1))
		require.NoError(t, err)
		assert.Len(t, set.All(), 2)
	})
}
