package ics

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTimespan(t *testing.T, opts ...TimespanOption) Timespan {
	t.Helper()
	ts, err := NewEventTimespan(opts...)
	require.NoError(t, err)
	return ts
}

func utc(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
}

func TestTimespanInvariants(t *testing.T) {
	tests := []struct {
		name string
		opts []TimespanOption
	}{
		{name: "end without begin", opts: []TimespanOption{WithEnd(utc(2024, 1, 1, 0, 0))}},
		{name: "negative duration", opts: []TimespanOption{WithBegin(utc(2024, 1, 1, 0, 0)), WithDuration(-time.Hour)}},
		{name: "end before begin", opts: []TimespanOption{WithBegin(utc(2024, 1, 2, 0, 0)), WithEnd(utc(2024, 1, 1, 0, 0))}},
		{name: "floating and zoned", opts: []TimespanOption{WithBegin(time.Date(2024, 1, 1, 0, 0, 0, 0, Floating)), WithEnd(utc(2024, 1, 2, 0, 0))}},
		{name: "day precision with a time", opts: []TimespanOption{WithPrecision(PrecisionDay), WithBegin(utc(2024, 1, 1, 0, 0))}},
		{name: "day precision with hours", opts: []TimespanOption{WithPrecision(PrecisionDay), WithBegin(Date{2024, 1, 1}.Time()), WithDuration(time.Hour)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEventTimespan(tt.opts...)
			assert.True(t, errors.Is(err, ErrInvalidTimespan), "got %v", err)
		})
	}

	due, err := NewTodoTimespan(WithEnd(utc(2024, 1, 1, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, utc(2024, 1, 1, 0, 0), due.Due())
}

func TestTimespanEffectiveEnd(t *testing.T) {
	begin := utc(2024, 3, 1, 9, 0)
	tests := []struct {
		name     string
		ts       Timespan
		end      time.Time
		duration time.Duration
	}{
		{name: "explicit end", ts: mustTimespan(t, WithBegin(begin), WithEnd(begin.Add(time.Hour))), end: begin.Add(time.Hour), duration: time.Hour},
		{name: "duration", ts: mustTimespan(t, WithBegin(begin), WithDuration(90*time.Minute)), end: begin.Add(90 * time.Minute), duration: 90 * time.Minute},
		{name: "instant", ts: mustTimespan(t, WithBegin(begin)), end: begin},
		{
			name:     "all day without end",
			ts:       mustTimespan(t, WithPrecision(PrecisionDay), WithBegin(Date{2024, 3, 1}.Time())),
			end:      Date{2024, 3, 2}.Time(),
			duration: 24 * time.Hour,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.end.Equal(tt.ts.End()), "got %v", tt.ts.End())
			assert.Equal(t, tt.duration, tt.ts.Duration())
		})
	}
}

func TestTimespanAlgebra(t *testing.T) {
	a := mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithEnd(utc(2024, 1, 1, 10, 0)))
	b := mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 0)), WithEnd(utc(2024, 1, 1, 11, 0)))
	c := mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 30)), WithDuration(time.Hour))
	inner := mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 15)), WithEnd(utc(2024, 1, 1, 9, 45)))

	assert.True(t, a.Includes(a.Begin()))
	assert.False(t, a.Includes(a.End()))
	assert.False(t, a.Intersects(b))
	assert.False(t, b.Intersects(a))
	assert.True(t, a.Intersects(c))
	assert.True(t, c.Intersects(b))
	assert.True(t, a.IncludesSpan(inner))
	assert.True(t, inner.IsIncludedIn(a))
	assert.False(t, a.IncludesSpan(c))
	assert.True(t, c.StartsWithin(a))
	assert.True(t, a.EndsWithin(c))
	assert.False(t, b.StartsWithin(a))
	assert.True(t, a.Less(b))
	assert.Equal(t, 0, a.Compare(a))
}

func TestTimespanIntersectsEdges(t *testing.T) {
	hour := mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 0)), WithEnd(utc(2024, 1, 1, 11, 0)))
	tests := []struct {
		name       string
		a, b       Timespan
		intersects bool
	}{
		{name: "instant at begin", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 0))), b: hour},
		{name: "instant at end", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 11, 0))), b: hour},
		{name: "instant inside", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 30))), b: hour, intersects: true},
		{name: "equal instants", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 0))), b: mustTimespan(t, WithBegin(utc(2024, 1, 1, 10, 0)))},
		{name: "adjacent before", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithDuration(time.Hour)), b: hour},
		{name: "adjacent after", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 11, 0)), WithDuration(time.Hour)), b: hour},
		{name: "same span", a: hour, b: hour, intersects: true},
		{name: "overlap by a minute", a: mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithEnd(utc(2024, 1, 1, 10, 1))), b: hour, intersects: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.intersects, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.intersects, tt.b.Intersects(tt.a))
		})
	}
}

func TestMakeAllDayIdempotent(t *testing.T) {
	tests := []Timespan{
		mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithEnd(utc(2024, 1, 3, 10, 0))),
		mustTimespan(t, WithBegin(utc(2024, 1, 1, 23, 0)), WithDuration(2*time.Hour)),
		mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0))),
	}
	for _, ts := range tests {
		t.Run(ts.String(), func(t *testing.T) {
			once, err := ts.MakeAllDay()
			require.NoError(t, err)
			twice, err := once.MakeAllDay()
			require.NoError(t, err)
			assert.Equal(t, once, twice)
			assert.True(t, once.IsAllDay())
			assert.True(t, IsFloating(once.Begin()))
			assert.GreaterOrEqual(t, once.Duration(), 24*time.Hour)
		})
	}
}

func TestConvertEndInvolutive(t *testing.T) {
	ts := mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithEnd(utc(2024, 1, 1, 12, 30)))
	d, err := ts.ConvertEnd(RepresentDuration)
	require.NoError(t, err)
	got, ok := d.ExplicitDuration()
	require.True(t, ok)
	assert.Equal(t, 3*time.Hour+30*time.Minute, got)
	_, hasEnd := d.ExplicitEnd()
	assert.False(t, hasEnd)

	back, err := d.ConvertEnd(RepresentEnd)
	require.NoError(t, err)
	assert.Equal(t, ts, back)
}

func TestTimespanString(t *testing.T) {
	ts := mustTimespan(t, WithBegin(utc(2024, 1, 1, 9, 0)), WithDuration(90*time.Minute))
	assert.Equal(t, "2024-01-01 09:00:00 UTC for 1 hour 30 minutes", ts.String())
	assert.Equal(t, "empty timespan", Timespan{}.String())
}
