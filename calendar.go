package ics

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
)

// Calendar represents a VCALENDAR object. RFC 5545 section 3.6 says:
// "A 'VCALENDAR' object MUST include the 'PRODID' and 'VERSION' properties".
// NewCalendar and NewCalendarFor create a calendar populated with those
// required fields.
type Calendar struct {
	ComponentBase
	Version   string
	ProductID string
	Scale     string
	Method    Method
	// Name is NAME (RFC 7986), or X-WR-CALNAME when NAME is absent.
	Name string
	// Description is DESCRIPTION, or X-WR-CALDESC when DESCRIPTION is absent.
	Description string
	Timezones   []*Timezone
	Events      []*Event
	Todos       []*Todo

	// derived records the fields filled in from an X-WR- property.
	derived map[Property]bool
}

// NewCalendar returns a basic Calendar using a default product identifier.
// The returned calendar satisfies the minimum requirements of RFC 5545 by
// including the VERSION and PRODID properties.
func NewCalendar() *Calendar {
	return NewCalendarFor("arran4")
}

// NewCalendarFor constructs a Calendar for the given service. The VERSION
// property is set to "2.0" as defined in RFC 5545 section 3.7.4 and PRODID is
// populated using the provided service identifier per section 3.7.3.
func NewCalendarFor(service string) *Calendar {
	return &Calendar{
		Version:   "2.0",
		ProductID: "-//" + service + "//Golang ICS Library",
	}
}

func (cal *Calendar) AddEvent(uid string) *Event {
	e := NewEvent(uid)
	cal.Events = append(cal.Events, e)
	return e
}

func (cal *Calendar) AddTodo(uid string) *Todo {
	t := NewTodo(uid)
	cal.Todos = append(cal.Todos, t)
	return t
}

// AddTimezone declares tz in the calendar.
func (cal *Calendar) AddTimezone(tz *Timezone) {
	cal.Timezones = append(cal.Timezones, tz)
}

// RemoveEvent removes the events with the given UID.
func (cal *Calendar) RemoveEvent(uid string) {
	kept := cal.Events[:0]
	for _, e := range cal.Events {
		if e.UID != uid {
			kept = append(kept, e)
		}
	}
	cal.Events = kept
}

// Timezone returns the declared time zone with the given TZID.
func (cal *Calendar) Timezone(tzid string) (*Timezone, bool) {
	for _, tz := range cal.Timezones {
		if tz.TZID == tzid {
			return tz, true
		}
	}
	return nil, false
}

// TimezoneOf returns the declared time zone t was parsed in.
func (cal *Calendar) TimezoneOf(t time.Time) (*Timezone, bool) {
	for _, tz := range cal.Timezones {
		if tz.state == nil {
			continue
		}
		if loc, err := tz.Location(); err == nil && loc == t.Location() {
			return tz, true
		}
	}
	return nil, false
}

// mirrors reports whether value was taken from the X- property fallback and
// is unchanged, in which case property is not written.
func (cal *Calendar) mirrors(property, fallback Property, value string) bool {
	if !cal.derived[property] {
		return false
	}
	s, err := cal.ExtraText(fallback)
	return err == nil && s == value
}

func (cal *Calendar) deriveFrom(field *string, property, fallback Property) {
	if *field != "" {
		return
	}
	if s, err := cal.ExtraText(fallback); err == nil && s != "" {
		*field = s
		if cal.derived == nil {
			cal.derived = map[Property]bool{}
		}
		cal.derived[property] = true
	}
}

const (
	priorityTimezones = -5
	priorityEntries   = -10
)

// calendarTimezones binds VTIMEZONE children. They are bound up front by
// harvestTimezones so that TZIDs anywhere in the calendar resolve to them.
type calendarTimezones struct{}

func (calendarTimezones) lines() []string      { return nil }
func (calendarTimezones) containers() []string { return []string{string(ComponentVTimezone)} }
func (calendarTimezones) priority() int        { return priorityTimezones }

func (calendarTimezones) populate(cal *Calendar, item contentline.Item, ctx *Context) (bool, error) {
	tz, ok := ctx.harvested[item.(*contentline.Container)]
	if !ok {
		return false, nil
	}
	cal.Timezones = append(cal.Timezones, tz)
	return true, nil
}

func (calendarTimezones) postPopulate(*Calendar, *Context) error { return nil }

func (calendarTimezones) serialize(cal *Calendar, out *contentline.Container, ctx *Context) error {
	for _, tz := range cal.Timezones {
		ctx.declared[tz.TZID] = true
	}
	for _, tz := range cal.Timezones {
		c, err := timezoneSchema().toContainer(tz, ctx)
		if err != nil {
			return err
		}
		out.Append(c)
	}
	ctx.reservation = len(out.Items)
	return nil
}

func harvestTimezones(_ *Calendar, c *contentline.Container, ctx *Context) error {
	for _, child := range c.Children(string(ComponentVTimezone)) {
		tz := &Timezone{}
		if err := timezoneSchema().populate(tz, child, ctx); err != nil {
			return err
		}
		ctx.harvested[child] = tz
		ctx.AddTimezone(tz)
	}
	return nil
}

// insertPendingTimezones places the VTIMEZONEs materialised while writing
// the calendar right after the declared ones.
func insertPendingTimezones(_ *Calendar, out *contentline.Container, ctx *Context) error {
	if len(ctx.pending) == 0 {
		return nil
	}
	items := make([]contentline.Item, len(ctx.pending))
	for i, c := range ctx.pending {
		items[i] = c
	}
	at := ctx.reservation
	if at < 0 {
		at = len(out.Items)
	}
	out.Insert(at, items...)
	ctx.pending = nil
	return nil
}

var calendarSchema = sync.OnceValue(func() *schema[Calendar] {
	name := scalarField(PropertyName, func(cal *Calendar) *string { return &cal.Name }, TextCodec)
	description := scalarField(PropertyDescription, func(cal *Calendar) *string { return &cal.Description }, TextCodec)
	s := newSchema[Calendar](string(ComponentVCalendar),
		scalarField(PropertyVersion, func(cal *Calendar) *string { return &cal.Version }, TextCodec).
			withDefault(func(*Calendar, *Context) []any { return []any{"2.0"} }).require().withPriority(20),
		scalarField(PropertyProductId, func(cal *Calendar) *string { return &cal.ProductID }, TextCodec).
			withDefault(func(*Calendar, *Context) []any { return []any{"-//arran4//Golang ICS Library"} }).require().withPriority(10),
		scalarField(PropertyCalscale, func(cal *Calendar) *string { return &cal.Scale }, TextCodec),
		scalarField(PropertyMethod, func(cal *Calendar) *Method { return &cal.Method }, methodCodec),
		guard(func(cal *Calendar) bool { return !cal.mirrors(PropertyName, PropertyXWRCalName, cal.Name) }, name),
		guard(func(cal *Calendar) bool {
			return !cal.mirrors(PropertyDescription, PropertyXWRCalDesc, cal.Description)
		}, description),
		calendarTimezones{},
		subcomponents(eventSchema, priorityEntries, func(cal *Calendar) *[]*Event { return &cal.Events }),
		subcomponents(todoSchema, priorityEntries, func(cal *Calendar) *[]*Todo { return &cal.Todos }),
	)
	s.prePopulate = harvestTimezones
	s.validate = func(cal *Calendar, _ *Context) error {
		cal.deriveFrom(&cal.Name, PropertyName, PropertyXWRCalName)
		cal.deriveFrom(&cal.Description, PropertyDescription, PropertyXWRCalDesc)
		return nil
	}
	s.postSerialize = insertPendingTimezones
	return s
})

// CalendarFromContainer binds a VCALENDAR container.
func CalendarFromContainer(c *contentline.Container, ops ...any) (*Calendar, error) {
	return bindContainer(calendarSchema(), c, ops)
}

// ToContainer renders the calendar as a VCALENDAR container, including a
// VTIMEZONE for every zone its datetimes use.
func (cal *Calendar) ToContainer(ops ...any) (*contentline.Container, error) {
	return renderContainer(calendarSchema(), cal, ops)
}

// ParseCalendars reads every VCALENDAR in r. Other top-level components are
// skipped with a warning.
func ParseCalendars(r io.Reader, ops ...any) ([]*Calendar, error) {
	o, err := parseOps(ops)
	if err != nil {
		return nil, err
	}
	p := contentline.NewParser(r)
	p.Logger = o.logger
	var cals []*Calendar
	for {
		c, err := p.Next()
		if err == io.EOF {
			return cals, nil
		}
		if err != nil {
			return nil, err
		}
		if c.Name != string(ComponentVCalendar) {
			o.logger.WithField("component", c.Name).Warn("skipping top-level component outside of a VCALENDAR")
			continue
		}
		cal := &Calendar{}
		if err := calendarSchema().populate(cal, c, newContext(o)); err != nil {
			return nil, err
		}
		cals = append(cals, cal)
	}
}

// ParseCalendar reads exactly one VCALENDAR from r.
func ParseCalendar(r io.Reader, ops ...any) (*Calendar, error) {
	cals, err := ParseCalendars(r, ops...)
	if err != nil {
		return nil, err
	}
	switch len(cals) {
	case 0:
		return nil, ErrNoCalendar
	case 1:
		return cals[0], nil
	}
	return nil, errors.Wrapf(ErrMultipleCalendars, "found %d", len(cals))
}

// Serialize renders the calendar as a string. Errors are not reported and
// yield an empty or partial result; use SerializeTo to see them.
func (cal *Calendar) Serialize(ops ...any) string {
	b := &strings.Builder{}
	// We are intentionally ignoring the return value. _ used to communicate this to lint.
	_ = cal.SerializeTo(b, ops...)
	return b.String()
}

// SerializeTo writes the calendar folded and terminated as configured by
// ops.
func (cal *Calendar) SerializeTo(w io.Writer, ops ...any) error {
	o, err := parseOps(ops)
	if err != nil {
		return err
	}
	c, err := calendarSchema().toContainer(cal, newContext(o))
	if err != nil {
		return err
	}
	return writeContainer(w, c, o)
}

func writeContainer(w io.Writer, c *contentline.Container, o *options) error {
	cw := contentline.NewWriter(w)
	cw.Width = o.serialization.MaxLength
	cw.NewLine = o.serialization.NewLine
	return cw.WriteContainer(c)
}

// serializeComponent renders a single component the way SerializeTo renders
// a calendar. Errors yield an empty string.
func serializeComponent[C any](s *schema[C], v *C, ops []any) string {
	o, err := parseOps(ops)
	if err != nil {
		return ""
	}
	c, err := s.toContainer(v, newContext(o))
	if err != nil {
		return ""
	}
	b := &strings.Builder{}
	if err := writeContainer(b, c, o); err != nil {
		return ""
	}
	return b.String()
}
