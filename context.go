package ics

import (
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/arran4/golang-icalendar/tzdb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Context is the mutable state threaded through one parse or serialisation.
// It holds the time zones visible to the component being bound, scratch
// state for converters and the stack of components currently being bound.
// Converters keep no state of their own, so schemas can be shared freely.
type Context struct {
	Logger   logrus.FieldLogger
	Database TimezoneDatabase
	Clock    Clock
	UIDs     UIDGenerator

	timezones map[string]*Timezone
	harvested map[*contentline.Container]*Timezone
	resolved  map[string]*time.Location
	frames    []*frame

	// serialisation
	declared    map[string]bool
	pending     []*contentline.Container
	reservation int
}

type frame struct {
	name      string
	component any
	state     map[any]any
}

func newContext(o *options) *Context {
	return &Context{
		Logger:      o.logger,
		Database:    o.database,
		Clock:       o.clock,
		UIDs:        o.uids,
		timezones:   map[string]*Timezone{},
		harvested:   map[*contentline.Container]*Timezone{},
		resolved:    map[string]*time.Location{},
		declared:    map[string]bool{},
		reservation: -1,
	}
}

// defaultContext is used by codecs called without a context.
func defaultContext() *Context {
	o, _ := parseOps(nil)
	return newContext(o)
}

func (ctx *Context) enter(name string, component any) {
	ctx.frames = append(ctx.frames, &frame{name: name, component: component, state: map[any]any{}})
}

func (ctx *Context) leave() {
	ctx.frames = ctx.frames[:len(ctx.frames)-1]
}

func (ctx *Context) top() *frame {
	if len(ctx.frames) == 0 {
		return nil
	}
	return ctx.frames[len(ctx.frames)-1]
}

// Component returns the component currently being bound.
func (ctx *Context) Component() any {
	if f := ctx.top(); f != nil {
		return f.component
	}
	return nil
}

func (ctx *Context) componentName() string {
	if f := ctx.top(); f != nil {
		return f.name
	}
	return ""
}

// state returns the scratch value stored for key in the current frame,
// creating it with init when absent.
func (ctx *Context) state(key any, init func() any) any {
	f := ctx.top()
	if v, ok := f.state[key]; ok {
		return v
	}
	v := init()
	f.state[key] = v
	return v
}

func (ctx *Context) setState(key, v any) {
	ctx.top().state[key] = v
}

func (ctx *Context) lookupState(key any) (any, bool) {
	f := ctx.top()
	if f == nil {
		return nil, false
	}
	v, ok := f.state[key]
	return v, ok
}

func (ctx *Context) schemaError(property, msg string) *SchemaError {
	return &SchemaError{Component: ctx.componentName(), Property: property, Msg: msg}
}

// AddTimezone makes tz visible to TZID resolution in this context.
func (ctx *Context) AddTimezone(tz *Timezone) {
	ctx.timezones[tz.TZID] = tz
}

// Location resolves a TZID to a location. Time zones declared by the
// enclosing calendar win over the time zone database, which wins over the
// system tzdata.
func (ctx *Context) Location(tzid string) (*time.Location, error) {
	if tz, ok := ctx.timezones[tzid]; ok {
		loc, err := tz.Location()
		if err != nil {
			return nil, &TimezoneError{TZID: tzid, Err: err}
		}
		return loc, nil
	}
	if loc, ok := ctx.resolved[tzid]; ok {
		return loc, nil
	}
	loc, err := ctx.databaseLocation(tzid)
	if err != nil && !errors.Is(err, tzdb.ErrNotFound) {
		return nil, &TimezoneError{TZID: tzid, Err: err}
	}
	if loc == nil {
		loc, err = time.LoadLocation(tzid)
		if err != nil || tzid == "" || tzid == "Local" {
			return nil, &TimezoneError{TZID: tzid, Err: tzdb.ErrNotFound}
		}
		ctx.Logger.WithField("tzid", tzid).Warn("time zone resolved from system tzdata, no iCalendar definition is available")
	}
	ctx.resolved[tzid] = loc
	return loc, nil
}

func (ctx *Context) databaseLocation(tzid string) (*time.Location, error) {
	if ctx.Database == nil {
		return nil, tzdb.ErrNotFound
	}
	if ldb, ok := ctx.Database.(LocationDatabase); ok {
		return ldb.Location(tzid)
	}
	c, err := ctx.Database.Lookup(tzid)
	if err != nil {
		return nil, err
	}
	tz := &Timezone{}
	if err := timezoneSchema().populate(tz, c, ctx); err != nil {
		return nil, err
	}
	return tz.Location()
}

// tzidFor returns the TZID to write for loc and makes sure a VTIMEZONE for
// it is emitted by the enclosing calendar.
func (ctx *Context) tzidFor(loc *time.Location) (string, error) {
	tzid := loc.String()
	if ctx.declared[tzid] {
		return tzid, nil
	}
	var c *contentline.Container
	if ctx.Database != nil {
		found, err := ctx.Database.Lookup(tzid)
		switch {
		case err == nil:
			c = found
		case !errors.Is(err, tzdb.ErrNotFound):
			return "", &TimezoneError{TZID: tzid, Err: err}
		}
	}
	if c == nil {
		c = tzdb.Synthesize(tzid, loc)
	}
	ctx.declared[tzid] = true
	ctx.pending = append(ctx.pending, c)
	return tzid, nil
}
