package ics

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/pkg/errors"
)

// EndKind names the property that ends a timespan.
type EndKind int

const (
	// EndKindEnd is used by events, which end with DTEND.
	EndKindEnd EndKind = iota
	// EndKindDue is used by to-dos, which end with DUE.
	EndKindDue
)

// Precision is the resolution of a timespan.
type Precision int

const (
	PrecisionSecond Precision = iota
	// PrecisionDay timespans hold floating midnights and whole days.
	PrecisionDay
)

func (p Precision) String() string {
	if p == PrecisionDay {
		return "day"
	}
	return "second"
}

// EndRepresentation selects how the end of a timespan is stored.
type EndRepresentation int

const (
	RepresentEnd EndRepresentation = iota
	RepresentDuration
)

// Timespan is the begin, end or duration and precision of an event or a
// to-do. It is immutable; the With options and Replace derive new values
// and every derived value is validated.
//
// At most one of end and duration is set. The end reported by End is the
// effective one, derived from the duration when needed. A day precision
// timespan lasts at least one day.
type Timespan struct {
	kind        EndKind
	begin       time.Time
	end         time.Time
	duration    time.Duration
	hasDuration bool
	precision   Precision
}

// TimespanOption changes one aspect of a timespan under construction.
type TimespanOption func(*Timespan)

func WithBegin(t time.Time) TimespanOption {
	return func(ts *Timespan) { ts.begin = t }
}

func WithoutBegin() TimespanOption {
	return func(ts *Timespan) { ts.begin = time.Time{} }
}

// WithEnd sets an explicit end and drops any duration.
func WithEnd(t time.Time) TimespanOption {
	return func(ts *Timespan) {
		ts.end = t
		ts.duration, ts.hasDuration = 0, false
	}
}

// WithDuration sets an explicit duration and drops any end.
func WithDuration(d time.Duration) TimespanOption {
	return func(ts *Timespan) {
		ts.end = time.Time{}
		ts.duration, ts.hasDuration = d, true
	}
}

func WithoutEnd() TimespanOption {
	return func(ts *Timespan) {
		ts.end = time.Time{}
		ts.duration, ts.hasDuration = 0, false
	}
}

func WithPrecision(p Precision) TimespanOption {
	return func(ts *Timespan) { ts.precision = p }
}

// NewEventTimespan builds a timespan ending in DTEND. An event timespan with
// an end or a duration must have a begin.
func NewEventTimespan(opts ...TimespanOption) (Timespan, error) {
	return Timespan{kind: EndKindEnd}.Replace(opts...)
}

// NewTodoTimespan builds a timespan ending in DUE.
func NewTodoTimespan(opts ...TimespanOption) (Timespan, error) {
	return Timespan{kind: EndKindDue}.Replace(opts...)
}

// Replace applies opts to a copy of t and validates the result.
func (t Timespan) Replace(opts ...TimespanOption) (Timespan, error) {
	for _, o := range opts {
		o(&t)
	}
	if err := t.validate(); err != nil {
		return Timespan{}, err
	}
	return t, nil
}

func isFloatingMidnight(t time.Time) bool {
	if !IsFloating(t) {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

func (t Timespan) validate() error {
	if t.kind == EndKindEnd && t.begin.IsZero() && (!t.end.IsZero() || t.hasDuration) {
		return errors.Wrap(ErrInvalidTimespan, "an event with an end needs a begin")
	}
	if t.hasDuration && t.duration < 0 {
		return errors.Wrapf(ErrInvalidTimespan, "negative duration %s", FormatDuration(t.duration))
	}
	if t.precision == PrecisionDay {
		for _, v := range []time.Time{t.begin, t.end} {
			if !v.IsZero() && !isFloatingMidnight(v) {
				return errors.Wrapf(ErrInvalidTimespan, "%s is not a floating midnight", v)
			}
		}
		if t.hasDuration && t.duration%day != 0 {
			return errors.Wrapf(ErrInvalidTimespan, "duration %s is not a whole number of days", FormatDuration(t.duration))
		}
	}
	if !t.begin.IsZero() && !t.end.IsZero() {
		if IsFloating(t.begin) != IsFloating(t.end) {
			return errors.Wrap(ErrInvalidTimespan, "begin and end must both be floating or both have a time zone")
		}
		if t.end.Before(t.begin) {
			return errors.Wrapf(ErrInvalidTimespan, "end %s is before begin %s", t.end, t.begin)
		}
	}
	return nil
}

// Kind reports whether the timespan ends in DTEND or DUE.
func (t Timespan) Kind() EndKind { return t.kind }

func (t Timespan) Precision() Precision { return t.precision }

func (t Timespan) IsAllDay() bool { return t.precision == PrecisionDay }

// IsZero reports whether nothing is set.
func (t Timespan) IsZero() bool {
	return t.begin.IsZero() && t.end.IsZero() && !t.hasDuration
}

func (t Timespan) Begin() time.Time { return t.begin }

// End returns the effective end: the explicit one, begin plus the duration,
// or for day precision at least the day after begin.
func (t Timespan) End() time.Time {
	var end time.Time
	switch {
	case !t.end.IsZero():
		end = t.end
	case t.hasDuration && !t.begin.IsZero():
		end = t.begin.Add(t.duration)
	case t.begin.IsZero():
		return time.Time{}
	default:
		end = t.begin
	}
	if t.precision == PrecisionDay && !t.begin.IsZero() && !end.After(t.begin) {
		return t.begin.AddDate(0, 0, 1)
	}
	return end
}

// Due is End under the name used by to-dos.
func (t Timespan) Due() time.Time { return t.End() }

// Duration returns the effective duration.
func (t Timespan) Duration() time.Duration {
	if !t.begin.IsZero() {
		if end := t.End(); !end.IsZero() {
			return end.Sub(t.begin)
		}
	}
	if t.hasDuration {
		if t.precision == PrecisionDay && t.duration < day {
			return day
		}
		return t.duration
	}
	return 0
}

// ExplicitEnd returns the end as it was set.
func (t Timespan) ExplicitEnd() (time.Time, bool) {
	return t.end, !t.end.IsZero()
}

// ExplicitDuration returns the duration as it was set.
func (t Timespan) ExplicitDuration() (time.Duration, bool) {
	return t.duration, t.hasDuration
}

func floorDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Floating)
}

func ceilDay(t time.Time) time.Time {
	f := floorDay(t)
	h, mi, s := t.Clock()
	if h == 0 && mi == 0 && s == 0 && t.Nanosecond() == 0 {
		return f
	}
	return f.AddDate(0, 0, 1)
}

// MakeAllDay converts t to day precision. The begin is floored and the end
// ceiled to floating midnights and spans shorter than a day grow to one
// day. A duration becomes the whole number of days it touches.
func (t Timespan) MakeAllDay() (Timespan, error) {
	if t.precision == PrecisionDay {
		return t, nil
	}
	r := t
	r.precision = PrecisionDay
	if !t.begin.IsZero() {
		r.begin = floorDay(t.begin)
	}
	switch {
	case !t.end.IsZero():
		r.end = ceilDay(t.end)
		if !r.begin.IsZero() && !r.end.After(r.begin) {
			r.end = r.begin.AddDate(0, 0, 1)
		}
	case t.hasDuration && !t.begin.IsZero():
		end := ceilDay(t.begin.Add(t.duration))
		r.duration = end.Sub(r.begin)
		if r.duration < day {
			r.duration = day
		}
	case t.hasDuration:
		days := (t.duration + day - 1) / day
		if days < 1 {
			days = 1
		}
		r.duration = days * day
	}
	if err := r.validate(); err != nil {
		return Timespan{}, err
	}
	return r, nil
}

// ConvertEnd switches between an explicit end and an explicit duration.
// Timespans without a begin or without an end are returned unchanged.
func (t Timespan) ConvertEnd(to EndRepresentation) (Timespan, error) {
	if t.begin.IsZero() {
		return t, nil
	}
	switch {
	case to == RepresentDuration && !t.end.IsZero():
		return t.Replace(WithDuration(t.end.Sub(t.begin)))
	case to == RepresentEnd && t.hasDuration:
		return t.Replace(WithEnd(t.begin.Add(t.duration)))
	}
	return t, nil
}

func normalize(v time.Time, loc *time.Location) time.Time {
	if v.IsZero() || !IsFloating(v) {
		return v
	}
	y, m, d := v.Date()
	h, mi, s := v.Clock()
	return time.Date(y, m, d, h, mi, s, v.Nanosecond(), loc)
}

// Normalized reinterprets floating times as wall clock times in loc, so
// that they can be compared with zoned times.
func (t Timespan) Normalized(loc *time.Location) Timespan {
	t.begin = normalize(t.begin, loc)
	t.end = normalize(t.end, loc)
	return t
}

// bounds returns the half open interval covered by t. A to-do without a
// begin starts at its due time.
func (t Timespan) bounds() (time.Time, time.Time) {
	t = t.Normalized(time.Local)
	b, e := t.begin, t.End()
	if b.IsZero() {
		b = e
	}
	if e.IsZero() {
		e = b
	}
	return b, e
}

// Includes reports whether x lies in [begin, end). A timespan without an
// extent includes its begin only.
func (t Timespan) Includes(x time.Time) bool {
	b, e := t.bounds()
	if b.IsZero() {
		return false
	}
	x = normalize(x, time.Local)
	return x.Equal(b) || (x.After(b) && x.Before(e))
}

// Intersects reports whether the two timespans overlap. Spans that only
// touch do not intersect. A timespan without an extent is a point and
// intersects a span only when it lies strictly inside it.
func (t Timespan) Intersects(o Timespan) bool {
	tb, te := t.bounds()
	ob, oe := o.bounds()
	if tb.IsZero() || ob.IsZero() {
		return false
	}
	switch tPoint, oPoint := tb.Equal(te), ob.Equal(oe); {
	case tPoint && oPoint:
		return false
	case tPoint:
		return tb.After(ob) && tb.Before(oe)
	case oPoint:
		return ob.After(tb) && ob.Before(te)
	}
	return tb.Before(oe) && ob.Before(te)
}

// IncludesSpan reports whether o lies within t.
func (t Timespan) IncludesSpan(o Timespan) bool {
	tb, te := t.bounds()
	ob, oe := o.bounds()
	if tb.IsZero() || ob.IsZero() {
		return false
	}
	return !ob.Before(tb) && !oe.After(te)
}

// IsIncludedIn reports whether t lies within o.
func (t Timespan) IsIncludedIn(o Timespan) bool {
	return o.IncludesSpan(t)
}

// StartsWithin reports whether the begin of t lies within o.
func (t Timespan) StartsWithin(o Timespan) bool {
	tb, _ := t.bounds()
	return !tb.IsZero() && o.Includes(tb)
}

// EndsWithin reports whether the end of t lies in (o.begin, o.end].
func (t Timespan) EndsWithin(o Timespan) bool {
	_, te := t.bounds()
	ob, oe := o.bounds()
	if te.IsZero() || ob.IsZero() {
		return false
	}
	return te.After(ob) && !te.After(oe)
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// Compare orders events by (begin, end) and to-dos by (due, begin), with
// floating times read as local time.
func (t Timespan) Compare(o Timespan) int {
	tn, on := t.Normalized(time.Local), o.Normalized(time.Local)
	if t.kind == EndKindDue {
		if c := compareTime(tn.End(), on.End()); c != 0 {
			return c
		}
		return compareTime(tn.begin, on.begin)
	}
	if c := compareTime(tn.begin, on.begin); c != 0 {
		return c
	}
	return compareTime(tn.End(), on.End())
}

func (t Timespan) Less(o Timespan) bool {
	return t.Compare(o) < 0
}

func (t Timespan) String() string {
	if t.IsZero() {
		return "empty timespan"
	}
	layout := "2006-01-02 15:04:05 MST"
	if t.precision == PrecisionDay {
		layout = "2006-01-02"
	}
	if t.begin.IsZero() {
		return fmt.Sprintf("due %s", t.End().Format(layout))
	}
	return fmt.Sprintf("%s for %s", t.begin.Format(layout), durationString(t.Duration()))
}

func durationString(d time.Duration) string {
	return durafmt.Parse(d).String()
}
