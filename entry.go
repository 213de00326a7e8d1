package ics

import (
	"net/url"
	"strings"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
)

// CalendarEntry holds what events and to-dos have in common.
type CalendarEntry struct {
	ComponentBase
	UID          string
	DTStamp      time.Time
	Timespan     Timespan
	Summary      string
	Description  string
	Location     string
	URL          *url.URL
	Status       ObjectStatus
	Created      time.Time
	LastModified time.Time
	Sequence     *int
	RecurrenceID *RecurrenceDate
	Recurrence   Recurrence
	Attachments  []Attachment
	Alarms       []*Alarm
}

// Begin returns the start of the entry, or the zero time.
func (e *CalendarEntry) Begin() time.Time {
	return e.Timespan.Begin()
}

// End returns the effective end of the entry, or the zero time.
func (e *CalendarEntry) End() time.Time {
	return e.Timespan.End()
}

func (e *CalendarEntry) Duration() time.Duration {
	return e.Timespan.Duration()
}

// IsDuring reports whether t falls within the entry.
func (e *CalendarEntry) IsDuring(t time.Time) (bool, error) {
	if e.Timespan.IsZero() {
		return false, ErrStartAndEndDateNotDefined
	}
	return e.Timespan.Includes(t), nil
}

// AddAlarm appends a new alarm with the given action and returns it.
func (e *CalendarEntry) AddAlarm(action AlarmAction) *Alarm {
	a := &Alarm{Action: action}
	e.Alarms = append(e.Alarms, a)
	return a
}

// Attach adds a reference attachment.
func (e *CalendarEntry) Attach(uri *url.URL, formatType string) {
	e.Attachments = append(e.Attachments, Attachment{URI: uri, FormatType: formatType})
}

// AttachBinary adds inline data, written base64 encoded.
func (e *CalendarEntry) AttachBinary(data []byte, formatType string) {
	e.Attachments = append(e.Attachments, Attachment{Data: data, FormatType: formatType})
}

const (
	priorityUID          = 100
	priorityDTStamp      = 90
	priorityTimespan     = 80
	priorityRecurrence   = -1
	prioritySubcomponent = -10
)

// Extra parameter keys of the timespan lines.
const (
	timespanBegin    = "begin"
	timespanEnd      = "end"
	timespanDuration = "duration"
)

// timespanConverter binds DTSTART, DTEND or DUE and DURATION to one
// Timespan.
type timespanConverter[C any] struct {
	kind EndKind
	get  func(c *C) *Timespan
}

type timespanState struct {
	begin, end any
	duration   *time.Duration
	seen       map[string]bool
}

func (t *timespanConverter[C]) endProperty() Property {
	if t.kind == EndKindDue {
		return PropertyDue
	}
	return PropertyDtend
}

func (t *timespanConverter[C]) lines() []string {
	return []string{string(PropertyDtstart), string(t.endProperty()), string(PropertyDuration)}
}

func (t *timespanConverter[C]) containers() []string { return nil }
func (t *timespanConverter[C]) priority() int        { return priorityTimespan }

var timeCodecs = []Codec{DateTimeCodec, DateCodec}

func (t *timespanConverter[C]) populate(c *C, item contentline.Item, ctx *Context) (bool, error) {
	cl := item.(contentline.ContentLine)
	st := ctx.state(t, func() any { return &timespanState{seen: map[string]bool{}} }).(*timespanState)
	codecs, key := timeCodecs, timespanBegin
	switch Property(cl.Name) {
	case PropertyDuration:
		codecs, key = []Codec{DurationCodec}, timespanDuration
	case t.endProperty():
		key = timespanEnd
	}
	pl, err := parseLine(cl, codecs, false, ctx)
	if err != nil || pl == nil {
		return false, err
	}
	if st.seen[key] {
		return false, ctx.schemaError(cl.Name, "must not occur more than once")
	}
	st.seen[key] = true
	switch key {
	case timespanBegin:
		st.begin = pl.values[0]
	case timespanEnd:
		st.end = pl.values[0]
	default:
		d := pl.values[0].(time.Duration)
		st.duration = &d
	}
	baseOf(c).setExtraParams(key, pl.params)
	return true, nil
}

func asTime(v any) (time.Time, bool) {
	switch v := v.(type) {
	case Date:
		return v.Time(), true
	case time.Time:
		return v, false
	}
	return time.Time{}, false
}

func (t *timespanConverter[C]) postPopulate(c *C, ctx *Context) error {
	v, ok := ctx.lookupState(t)
	if !ok {
		return nil
	}
	st := v.(*timespanState)
	endName := string(t.endProperty())
	if st.end != nil && st.duration != nil {
		return ctx.schemaError(endName, endName+" and DURATION are mutually exclusive")
	}
	var opts []TimespanOption
	begin, beginDay := asTime(st.begin)
	if st.begin != nil {
		opts = append(opts, WithBegin(begin))
		if beginDay {
			opts = append(opts, WithPrecision(PrecisionDay))
		}
	}
	if st.end != nil {
		end, endDay := asTime(st.end)
		if st.begin != nil && endDay != beginDay {
			return ctx.schemaError(endName, "DTSTART and "+endName+" must both be dates or both be date-times")
		}
		if st.begin == nil && endDay {
			opts = append(opts, WithPrecision(PrecisionDay))
		}
		opts = append(opts, WithEnd(end))
	}
	if st.duration != nil {
		opts = append(opts, WithDuration(*st.duration))
	}
	var ts Timespan
	var err error
	if t.kind == EndKindDue {
		ts, err = NewTodoTimespan(opts...)
	} else {
		ts, err = NewEventTimespan(opts...)
	}
	if err != nil {
		return &SchemaError{Component: ctx.componentName(), Property: string(PropertyDtstart), Msg: "inconsistent timespan", Err: err}
	}
	*t.get(c) = ts
	return nil
}

func (t *timespanConverter[C]) timeValue(v time.Time, day bool) any {
	if day {
		return DateOf(v)
	}
	return v
}

func (t *timespanConverter[C]) serialize(c *C, out *contentline.Container, ctx *Context) error {
	ts := *t.get(c)
	if ts.IsZero() {
		return nil
	}
	ctx.setState(dtstartKey{}, ts)
	base := baseOf(c)
	write := func(property Property, key string, v any, codecs []Codec) error {
		var extras []contentline.Params
		if ps := base.extraParams(key); len(ps) == 1 {
			extras = ps
		}
		return appendValues(out, string(property), []any{v}, extras, codecs, false, ctx)
	}
	day := ts.IsAllDay()
	if b := ts.Begin(); !b.IsZero() {
		if err := write(PropertyDtstart, timespanBegin, t.timeValue(b, day), timeCodecs); err != nil {
			return err
		}
	}
	if end, ok := ts.ExplicitEnd(); ok {
		if err := write(t.endProperty(), timespanEnd, t.timeValue(end, day), timeCodecs); err != nil {
			return err
		}
	}
	if d, ok := ts.ExplicitDuration(); ok {
		if err := write(PropertyDuration, timespanDuration, d, []Codec{DurationCodec}); err != nil {
			return err
		}
	}
	return nil
}

func newTimespanConverter[C any](kind EndKind, get func(c *C) *Timespan) *timespanConverter[C] {
	return &timespanConverter[C]{kind: kind, get: get}
}

func defaultUID[C any](_ *C, ctx *Context) []any {
	return []any{ctx.UIDs.NewUID()}
}

func defaultDTStamp[C any](_ *C, ctx *Context) []any {
	return []any{ctx.Clock.Now().UTC().Truncate(time.Second)}
}

// entryConverters binds the CalendarEntry fields of an event or a to-do.
func entryConverters[C any](kind EndKind, entry func(c *C) *CalendarEntry) []converter[C] {
	return []converter[C]{
		scalarField(PropertyUid, func(c *C) *string { return &entry(c).UID }, TextCodec).
			withDefault(defaultUID[C]).require().withPriority(priorityUID),
		scalarField(PropertyDtstamp, func(c *C) *time.Time { return &entry(c).DTStamp }, DateTimeCodec).
			withDefault(defaultDTStamp[C]).require().withPriority(priorityDTStamp),
		newTimespanConverter(kind, func(c *C) *Timespan { return &entry(c).Timespan }),
		scalarField(PropertySummary, func(c *C) *string { return &entry(c).Summary }, TextCodec),
		scalarField(PropertyDescription, func(c *C) *string { return &entry(c).Description }, TextCodec),
		scalarField(PropertyLocation, func(c *C) *string { return &entry(c).Location }, TextCodec),
		scalarField(PropertyUrl, func(c *C) **url.URL { return &entry(c).URL }, URICodec),
		scalarField(PropertyStatus, func(c *C) *ObjectStatus { return &entry(c).Status }, objectStatusCodec),
		scalarField(PropertyCreated, func(c *C) *time.Time { return &entry(c).Created }, DateTimeCodec),
		scalarField(PropertyLastModified, func(c *C) *time.Time { return &entry(c).LastModified }, DateTimeCodec),
		optionalField(PropertySequence, func(c *C) **int { return &entry(c).Sequence }, IntegerCodec),
		optionalField(PropertyRecurrenceId, func(c *C) **RecurrenceDate { return &entry(c).RecurrenceID },
			recurrenceDateTimeCodec, recurrenceDateCodec),
		listField(PropertyAttach, false, func(c *C) *[]Attachment { return &entry(c).Attachments },
			attachURICodec, attachBinaryCodec),
		newRecurrenceConverter(priorityRecurrence, func(c *C) *Recurrence { return &entry(c).Recurrence }),
		subcomponents(alarmSchema, prioritySubcomponent, func(c *C) *[]*Alarm { return &entry(c).Alarms }),
	}
}

// validateStatus checks STATUS against the values RFC 5545 allows for the
// component.
func validateStatus(status ObjectStatus, allowed []ObjectStatus, ctx *Context) error {
	if status == "" {
		return nil
	}
	for _, s := range allowed {
		if strings.EqualFold(string(status), string(s)) {
			return nil
		}
	}
	return ctx.schemaError(string(PropertyStatus), "invalid status "+string(status))
}

// bindContainer binds c with s using the options in ops.
func bindContainer[C any](s *schema[C], c *contentline.Container, ops []any) (*C, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	r := new(C)
	if err := s.populate(r, c, newContext(o)); err != nil {
		return nil, err
	}
	return r, nil
}

func renderContainer[C any](s *schema[C], v *C, ops []any) (*contentline.Container, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	return s.toContainer(v, newContext(o))
}

// setTimespan replaces the timespan of an entry, keeping what opts do not
// change.
func setTimespan(ts *Timespan, kind EndKind, opts ...TimespanOption) error {
	cur := *ts
	cur.kind = kind
	r, err := cur.Replace(opts...)
	if err != nil {
		return errors.WithStack(err)
	}
	*ts = r
	return nil
}
