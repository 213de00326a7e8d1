package ics

import (
	"fmt"
	"net/url"
	"time"
)

// Floating is the location of DATE-TIME values that carry neither a UTC
// designator nor a TZID. Such values denote a wall clock reading that is
// interpreted in whatever zone the observer is in.
var Floating = time.FixedZone("Floating", 0)

// IsFloating reports whether t is a floating datetime.
func IsFloating(t time.Time) bool {
	return t.Location() == Floating
}

// IsUTC reports whether loc should be written with the UTC designator. A
// location counts as UTC when it is named UTC or Etc/UTC, or when it has a
// zero offset and no daylight saving time.
func IsUTC(loc *time.Location) bool {
	switch {
	case loc == nil || loc == time.UTC:
		return true
	case loc == Floating:
		return false
	}
	switch loc.String() {
	case "UTC", "Etc/UTC":
		return true
	}
	for _, m := range []time.Month{time.January, time.July} {
		t := time.Date(2000, m, 1, 0, 0, 0, 0, loc)
		if _, off := t.Zone(); off != 0 || t.IsDST() {
			return false
		}
	}
	return true
}

// Date is a DATE value: a calendar day without a time or a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Time returns midnight of d as a floating datetime.
func (d Date) Time() time.Time {
	return d.In(Floating)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Period is a PERIOD value. It is either explicit, with End set, or starts
// at Start and lasts Duration.
type Period struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// EndTime returns the end of the period regardless of its form.
func (p Period) EndTime() time.Time {
	if !p.End.IsZero() {
		return p.End
	}
	return p.Start.Add(p.Duration)
}

// UTCOffset is a UTC-OFFSET value.
type UTCOffset time.Duration

// Seconds returns the offset in seconds east of UTC.
func (o UTCOffset) Seconds() int {
	return int(time.Duration(o) / time.Second)
}

func (o UTCOffset) String() string {
	return formatUTCOffset(o)
}

// Geo is a GEO value.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// Attachment is an ATTACH value: either a reference or inline data.
// FormatType is the FMTTYPE media type.
type Attachment struct {
	URI        *url.URL
	Data       []byte
	FormatType string
}
