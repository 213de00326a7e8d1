package ics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arran4/golang-icalendar/tzdb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var copenhagenLines = []string{
	"BEGIN:VTIMEZONE",
	"TZID:Europe/Copenhagen",
	"BEGIN:STANDARD",
	"DTSTART:19961027T030000",
	"TZOFFSETFROM:+0200",
	"TZOFFSETTO:+0100",
	"TZNAME:CET",
	"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
	"END:STANDARD",
	"BEGIN:DAYLIGHT",
	"DTSTART:19810329T020000",
	"TZOFFSETFROM:+0100",
	"TZOFFSETTO:+0200",
	"TZNAME:CEST",
	"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
	"END:DAYLIGHT",
	"END:VTIMEZONE",
}

func TestTimezoneQueries(t *testing.T) {
	c := mustContainer(t, copenhagenLines...)
	tz, err := TimezoneFromContainer(c)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Copenhagen", tz.TZID)
	require.Len(t, tz.Observances, 2)
	assert.False(t, tz.Observances[0].IsDaylight())
	assert.True(t, tz.Observances[1].IsDaylight())

	tests := []struct {
		name   string
		at     time.Time
		offset time.Duration
		dst    time.Duration
		tzname string
	}{
		{name: "summer", at: time.Date(2021, 7, 1, 12, 0, 0, 0, Floating), offset: 2 * time.Hour, dst: time.Hour, tzname: "CEST"},
		{name: "winter", at: time.Date(2021, 1, 15, 12, 0, 0, 0, Floating), offset: time.Hour, tzname: "CET"},
		{name: "just after spring onset", at: time.Date(2021, 3, 28, 2, 0, 0, 0, Floating), offset: 2 * time.Hour, dst: time.Hour, tzname: "CEST"},
		{name: "just before autumn onset", at: time.Date(2021, 10, 31, 2, 59, 59, 0, Floating), offset: 2 * time.Hour, dst: time.Hour, tzname: "CEST"},
		{name: "autumn onset", at: time.Date(2021, 10, 31, 3, 0, 0, 0, Floating), offset: time.Hour, tzname: "CET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.offset, tz.UTCOffset(tt.at))
			assert.Equal(t, tt.dst, tz.DST(tt.at))
			assert.Equal(t, tt.tzname, tz.TZName(tt.at))
		})
	}

	t.Run("before the first onset", func(t *testing.T) {
		assert.Equal(t, time.Hour, tz.UTCOffset(time.Date(1970, 1, 1, 0, 0, 0, 0, Floating)))
	})

	t.Run("location", func(t *testing.T) {
		loc, err := tz.Location()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Copenhagen", loc.String())
		name, offset := time.Date(2021, 7, 1, 12, 0, 0, 0, loc).Zone()
		assert.Equal(t, "CEST", name)
		assert.Equal(t, 7200, offset)
		name, offset = time.Date(2021, 1, 15, 12, 0, 0, 0, loc).Zone()
		assert.Equal(t, "CET", name)
		assert.Equal(t, 3600, offset)
	})

	t.Run("round trip", func(t *testing.T) {
		out, err := tz.ToContainer()
		require.NoError(t, err)
		assert.Equal(t, c.String(), out.String())
	})
}

func TestTimezoneConcurrentQueries(t *testing.T) {
	tz, err := TimezoneFromContainer(mustContainer(t, copenhagenLines...))
	require.NoError(t, err)
	var wg sync.WaitGroup
	offsets := make([]time.Duration, 24)
	for i := range offsets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offsets[i] = tz.UTCOffset(time.Date(2000+i, time.Month(i%12+1), 10, 12, 0, 0, 0, Floating))
		}(i)
	}
	wg.Wait()
	for i, got := range offsets {
		want := time.Hour
		if m := i%12 + 1; m >= 4 && m <= 10 {
			want = 2 * time.Hour
		}
		assert.Equal(t, want, got, "year %d", 2000+i)
	}
}

func TestTimezoneNeedsObservance(t *testing.T) {
	_, err := TimezoneFromContainer(mustContainer(t, "BEGIN:VTIMEZONE", "TZID:Empty", "END:VTIMEZONE"))
	var se *SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "VTIMEZONE", se.Component)
}

func TestNewTimezone(t *testing.T) {
	tz := NewTimezone("Fixed/Plus3", &Observance{
		Kind:       ComponentStandard,
		Start:      time.Date(1970, 1, 1, 0, 0, 0, 0, Floating),
		OffsetFrom: UTCOffset(3 * time.Hour),
		OffsetTo:   UTCOffset(3 * time.Hour),
		Names:      []string{"+03"},
	})
	assert.Equal(t, 3*time.Hour, tz.UTCOffset(time.Date(2024, 6, 1, 0, 0, 0, 0, Floating)))
	assert.Equal(t, "+03", tz.TZName(time.Date(2024, 6, 1, 0, 0, 0, 0, Floating)))
	assert.Zero(t, tz.DST(time.Date(2024, 6, 1, 0, 0, 0, 0, Floating)))

	out, err := tz.ToContainer()
	require.NoError(t, err)
	want := mustContainer(t,
		"BEGIN:VTIMEZONE",
		"TZID:Fixed/Plus3",
		"BEGIN:STANDARD",
		"DTSTART:19700101T000000",
		"TZOFFSETFROM:+0300",
		"TZOFFSETTO:+0300",
		"TZNAME:+03",
		"END:STANDARD",
		"END:VTIMEZONE",
	)
	assert.Equal(t, want.String(), out.String())
}

func TestTimezoneFromTZID(t *testing.T) {
	t.Run("windows name", func(t *testing.T) {
		tz, err := TimezoneFromTZID("W. Europe Standard Time")
		require.NoError(t, err)
		assert.Equal(t, "W. Europe Standard Time", tz.TZID)
		summer := time.Date(2021, 7, 1, 12, 0, 0, 0, Floating)
		assert.Equal(t, 2*time.Hour, tz.UTCOffset(summer))
		assert.Equal(t, time.Hour, tz.DST(summer))
		loc, err := tz.Location()
		require.NoError(t, err)
		assert.Equal(t, "W. Europe Standard Time", loc.String())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := TimezoneFromTZID("Nowhere/Special")
		var te *TimezoneError
		require.True(t, errors.As(err, &te), "got %v", err)
		assert.Equal(t, "Nowhere/Special", te.TZID)
	})
}

func TestSynthesizedTimezoneMatchesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	tz, err := TimezoneFromContainer(tzdb.Synthesize("Europe/Berlin", berlin))
	require.NoError(t, err)
	loc, err := tz.Location()
	require.NoError(t, err)

	for year := 2000; year <= 2030; year++ {
		for month := time.January; month <= time.December; month++ {
			instant := time.Date(year, month, 15, 12, 0, 0, 0, time.UTC)
			_, want := instant.In(berlin).Zone()
			assert.Equal(t, time.Duration(want)*time.Second, tz.UTCOffset(instant.In(berlin)), "%v", instant)
			_, got := instant.In(loc).Zone()
			assert.Equal(t, want, got, "%v", instant)
		}
	}
}

func TestSynthesizedTimezoneIsStable(t *testing.T) {
	for _, name := range []string{"Europe/Berlin", "America/New_York", "Asia/Kolkata"} {
		t.Run(name, func(t *testing.T) {
			loc, err := time.LoadLocation(name)
			require.NoError(t, err)
			synthesized := tzdb.Synthesize(name, loc)
			tz, err := TimezoneFromContainer(synthesized)
			require.NoError(t, err)
			out, err := tz.ToContainer()
			require.NoError(t, err)
			assert.Equal(t, synthesized.String(), out.String())
		})
	}

	t.Run("calendar", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		cal := NewCalendarFor("stable")
		e := cal.AddEvent("stable@example.com")
		require.NoError(t, e.SetStartAt(time.Date(2024, 4, 1, 18, 0, 0, 0, berlin)))
		first := cal.Serialize(fixedOps()...)

		parsed, err := ParseCalendar(strings.NewReader(first))
		require.NoError(t, err)
		assert.Equal(t, first, parsed.Serialize(fixedOps()...))
	})
}
