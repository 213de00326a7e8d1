package ics

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
)

const (
	dateLayout        = "20060102"
	dateTimeLayout    = "20060102T150405"
	dateTimeUTCLayout = "20060102T150405Z"
	timeLayout        = "150405"
)

var (
	datePattern     = regexp.MustCompile(`^([0-9]{4})([0-9]{2})([0-9]{2})$`)
	dateTimePattern = regexp.MustCompile(`^([0-9]{4})([0-9]{2})([0-9]{2})T([0-9]{2})([0-9]{2})([0-9]{2})(Z)?$`)
	timePattern     = regexp.MustCompile(`^([0-9]{2})([0-9]{2})([0-9]{2})(Z)?$`)
	durationPattern = regexp.MustCompile(`^([+-])?P(?:([0-9]+)W)?(?:([0-9]+)D)?(?:T(?:([0-9]+)H)?(?:([0-9]+)M)?(?:([0-9]+)S)?)?$`)
)

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

// zoneFromParams pops TZID from params and resolves it. Values without a
// TZID are floating.
func zoneFromParams(params *contentline.Params, ctx *Context) (*time.Location, error) {
	vs, ok := params.Pop(string(ParameterTzid))
	if !ok || len(vs) == 0 {
		return Floating, nil
	}
	if ctx == nil {
		ctx = defaultContext()
	}
	return ctx.Location(vs[0].Value)
}

// zoneToParams records the TZID for a zoned value in params and returns the
// layout to format it with.
func zoneToParams(t time.Time, params *contentline.Params, ctx *Context, local, utc string) (string, time.Time, error) {
	loc := t.Location()
	switch {
	case loc == Floating:
		return local, t, nil
	case IsUTC(loc):
		return utc, t.UTC(), nil
	}
	if ctx == nil {
		ctx = defaultContext()
	}
	tzid, err := ctx.tzidFor(loc)
	if err != nil {
		return "", t, err
	}
	params.Set(string(ParameterTzid), contentline.Raw(tzid))
	return local, t, nil
}

type dateCodec struct{}

func (dateCodec) Type() ValueDataType { return ValueDataTypeDate }

func (dateCodec) Accepts(v any) bool {
	_, ok := v.(Date)
	return ok
}

func (dateCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	return ParseDate(s)
}

func (dateCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	d := v.(Date)
	return d.In(time.UTC).Format(dateLayout), nil
}

// ParseDate parses a YYYYMMDD value.
func ParseDate(s string) (Date, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return Date{}, valueErrorf(ValueDataTypeDate, s, "expected YYYYMMDD")
	}
	d := Date{Year: atoi(m[1]), Month: time.Month(atoi(m[2])), Day: atoi(m[3])}
	if DateOf(d.In(time.UTC)) != d {
		return Date{}, valueErrorf(ValueDataTypeDate, s, "no such day")
	}
	return d, nil
}

type dateTimeCodec struct{}

func (dateTimeCodec) Type() ValueDataType { return ValueDataTypeDateTime }

func (dateTimeCodec) Accepts(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

func (dateTimeCodec) Parse(s string, params *contentline.Params, ctx *Context) (any, error) {
	loc, err := zoneFromParams(params, ctx)
	if err != nil {
		return nil, err
	}
	return ParseDateTime(s, loc)
}

func (dateTimeCodec) Serialize(v any, params *contentline.Params, ctx *Context) (string, error) {
	layout, t, err := zoneToParams(v.(time.Time), params, ctx, dateTimeLayout, dateTimeUTCLayout)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// ParseDateTime parses a YYYYMMDDTHHMMSS[Z] value. Values without the UTC
// designator are placed in loc.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	m := dateTimePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, valueErrorf(ValueDataTypeDateTime, s, "expected YYYYMMDDTHHMMSS[Z]")
	}
	if m[7] == "Z" {
		loc = time.UTC
	}
	if loc == nil {
		loc = Floating
	}
	y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
	h, mi, sec := atoi(m[4]), atoi(m[5]), atoi(m[6])
	if h > 23 || mi > 59 || sec > 60 {
		return time.Time{}, valueErrorf(ValueDataTypeDateTime, s, "time of day out of range")
	}
	if sec == 60 {
		// leap second
		sec = 59
	}
	date := Date{Year: y, Month: time.Month(mo), Day: d}
	if DateOf(date.In(time.UTC)) != date {
		return time.Time{}, valueErrorf(ValueDataTypeDateTime, s, "no such day")
	}
	return time.Date(y, time.Month(mo), d, h, mi, sec, 0, loc), nil
}

type timeCodec struct{}

func (timeCodec) Type() ValueDataType { return ValueDataTypeTime }

func (timeCodec) Accepts(v any) bool {
	t, ok := v.(time.Time)
	return ok && t.Year() == 0
}

func (timeCodec) Parse(s string, params *contentline.Params, ctx *Context) (any, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return nil, valueErrorf(ValueDataTypeTime, s, "expected HHMMSS[Z]")
	}
	loc, err := zoneFromParams(params, ctx)
	if err != nil {
		return nil, err
	}
	if m[4] == "Z" {
		loc = time.UTC
	}
	h, mi, sec := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if h > 23 || mi > 59 || sec > 60 {
		return nil, valueErrorf(ValueDataTypeTime, s, "time of day out of range")
	}
	if sec == 60 {
		sec = 59
	}
	return time.Date(0, time.January, 1, h, mi, sec, 0, loc), nil
}

func (timeCodec) Serialize(v any, params *contentline.Params, ctx *Context) (string, error) {
	layout, t, err := zoneToParams(v.(time.Time), params, ctx, timeLayout, timeLayout+"Z")
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

type durationCodec struct{}

func (durationCodec) Type() ValueDataType { return ValueDataTypeDuration }

func (durationCodec) Accepts(v any) bool {
	_, ok := v.(time.Duration)
	return ok
}

func (durationCodec) Parse(s string, _ *contentline.Params, _ *Context) (any, error) {
	return ParseDuration(s)
}

func (durationCodec) Serialize(v any, _ *contentline.Params, _ *Context) (string, error) {
	return FormatDuration(v.(time.Duration)), nil
}

const day = 24 * time.Hour

// ParseDuration parses an RFC 5545 DURATION such as "-P1W" or "P1DT2H30M".
// Weeks cannot be combined with other designators.
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, valueErrorf(ValueDataTypeDuration, s, "expected [+-]P[nW][nD][T[nH][nM][nS]]")
	}
	if m[2] != "" && (m[3] != "" || m[4] != "" || m[5] != "" || m[6] != "") {
		return 0, valueErrorf(ValueDataTypeDuration, s, "weeks cannot be combined with other designators")
	}
	if m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" && m[6] == "" {
		return 0, valueErrorf(ValueDataTypeDuration, s, "no designators")
	}
	if strings.HasSuffix(s, "T") {
		return 0, valueErrorf(ValueDataTypeDuration, s, "T without a time designator")
	}
	var total time.Duration
	for i, unit := range []time.Duration{7 * day, day, time.Hour, time.Minute, time.Second} {
		v := m[i+2]
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n > math.MaxInt64/int64(unit) || total > math.MaxInt64-time.Duration(n)*unit {
			return 0, valueErrorf(ValueDataTypeDuration, s, "out of range")
		}
		total += time.Duration(n) * unit
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// FormatDuration formats d as an RFC 5545 DURATION, truncated to seconds.
// Whole weeks use the week designator, everything else days and a time part.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	if d%(7*day) == 0 {
		b.WriteString(strconv.FormatInt(int64(d/(7*day)), 10) + "W")
		return b.String()
	}
	if days := d / day; days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10) + "D")
		d -= days * day
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	if h := d / time.Hour; h > 0 {
		b.WriteString(strconv.FormatInt(int64(h), 10) + "H")
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		b.WriteString(strconv.FormatInt(int64(m), 10) + "M")
		d -= m * time.Minute
	}
	if d > 0 {
		b.WriteString(strconv.FormatInt(int64(d/time.Second), 10) + "S")
	}
	return b.String()
}

type periodCodec struct{}

func (periodCodec) Type() ValueDataType { return ValueDataTypePeriod }

func (periodCodec) Accepts(v any) bool {
	_, ok := v.(Period)
	return ok
}

func (periodCodec) Parse(s string, params *contentline.Params, ctx *Context) (any, error) {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return nil, valueErrorf(ValueDataTypePeriod, s, "expected start/end or start/duration")
	}
	loc, err := zoneFromParams(params, ctx)
	if err != nil {
		return nil, err
	}
	var p Period
	if p.Start, err = ParseDateTime(start, loc); err != nil {
		return nil, err
	}
	if strings.Contains(end, "P") {
		if p.Duration, err = ParseDuration(end); err != nil {
			return nil, err
		}
		if p.Duration < 0 {
			return nil, valueErrorf(ValueDataTypePeriod, s, "negative duration")
		}
		return p, nil
	}
	if p.End, err = ParseDateTime(end, loc); err != nil {
		return nil, err
	}
	if p.End.Before(p.Start) {
		return nil, valueErrorf(ValueDataTypePeriod, s, "end before start")
	}
	return p, nil
}

func (periodCodec) Serialize(v any, params *contentline.Params, ctx *Context) (string, error) {
	p := v.(Period)
	layout, start, err := zoneToParams(p.Start, params, ctx, dateTimeLayout, dateTimeUTCLayout)
	if err != nil {
		return "", err
	}
	if p.End.IsZero() {
		return start.Format(layout) + "/" + FormatDuration(p.Duration), nil
	}
	return start.Format(layout) + "/" + p.End.In(start.Location()).Format(layout), nil
}
