package ics

import (
	"regexp"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"
)

// Recurrence is the recurrence set of a component: its RRULE, EXRULE, RDATE
// and EXDATE properties.
type Recurrence struct {
	RRules  []rrule.ROption
	ExRules []rrule.ROption
	RDates  []RecurrenceDate
	ExDates []RecurrenceDate
}

func (r Recurrence) IsZero() bool {
	return len(r.RRules) == 0 && len(r.ExRules) == 0 && len(r.RDates) == 0 && len(r.ExDates) == 0
}

// Set builds an rrule.Set anchored at dtstart. rrule.Set holds one rule, so
// recurrences with several RRULEs or with EXRULEs are rejected.
func (r Recurrence) Set(dtstart time.Time) (*rrule.Set, error) {
	if len(r.RRules) > 1 || len(r.ExRules) > 0 {
		return nil, errors.Errorf("cannot build a set from %d RRULEs and %d EXRULEs", len(r.RRules), len(r.ExRules))
	}
	set := &rrule.Set{}
	if len(r.RRules) == 1 {
		opt := r.RRules[0]
		opt.Dtstart = dtstart
		rule, err := rrule.NewRRule(opt)
		if err != nil {
			return nil, errors.Wrap(err, "RRULE")
		}
		set.RRule(rule)
	} else {
		set.RDate(dtstart)
	}
	loc := dtstart.Location()
	for _, d := range r.RDates {
		set.RDate(inLocation(d.Start(), loc))
	}
	for _, d := range r.ExDates {
		set.ExDate(inLocation(d.Start(), loc))
	}
	return set, nil
}

// inLocation moves a floating time to loc keeping its wall clock.
func inLocation(t time.Time, loc *time.Location) time.Time {
	if IsFloating(t) {
		return normalize(t, loc)
	}
	return t
}

// dtstartKey is the context state key under which the timespan converter
// leaves the DTSTART being written, for the RRULE writer.
type dtstartKey struct{}

var untilPattern = regexp.MustCompile(`UNTIL=([0-9]{8})(T[0-9]{6})?(Z)?`)

// recurText rewrites UNTIL for the DTSTART it belongs to: dates for all-day
// components and local times for floating ones.
func recurText(s string, ctx *Context) string {
	if ctx == nil {
		return s
	}
	v, ok := ctx.lookupState(dtstartKey{})
	if !ok {
		return s
	}
	start := v.(Timespan)
	switch {
	case start.IsAllDay():
		return untilPattern.ReplaceAllString(s, "UNTIL=$1")
	case IsFloating(start.Begin()):
		return untilPattern.ReplaceAllString(s, "UNTIL=$1$2")
	}
	return s
}

// recurrenceConverter binds the four recurrence properties to a Recurrence
// field.
type recurrenceConverter[C any] struct {
	parts []converter[C]
	prio  int
}

func newRecurrenceConverter[C any](prio int, get func(c *C) *Recurrence) *recurrenceConverter[C] {
	return &recurrenceConverter[C]{
		prio: prio,
		parts: []converter[C]{
			listField(PropertyRrule, false, func(c *C) *[]rrule.ROption { return &get(c).RRules }, RecurCodec),
			listField(PropertyExrule, false, func(c *C) *[]rrule.ROption { return &get(c).ExRules }, RecurCodec),
			listField(PropertyRdate, true, func(c *C) *[]RecurrenceDate { return &get(c).RDates },
				recurrenceDateTimeCodec, recurrenceDateCodec, recurrencePeriodCodec),
			listField(PropertyExdate, true, func(c *C) *[]RecurrenceDate { return &get(c).ExDates },
				recurrenceDateTimeCodec, recurrenceDateCodec),
		},
	}
}

func (r *recurrenceConverter[C]) lines() []string {
	return []string{string(PropertyRrule), string(PropertyExrule), string(PropertyRdate), string(PropertyExdate)}
}

func (r *recurrenceConverter[C]) containers() []string { return nil }
func (r *recurrenceConverter[C]) priority() int        { return r.prio }

func (r *recurrenceConverter[C]) populate(c *C, item contentline.Item, ctx *Context) (bool, error) {
	cl := item.(contentline.ContentLine)
	for _, p := range r.parts {
		if p.lines()[0] == cl.Name {
			return p.populate(c, item, ctx)
		}
	}
	return false, nil
}

func (r *recurrenceConverter[C]) postPopulate(c *C, ctx *Context) error {
	for _, p := range r.parts {
		if err := p.postPopulate(c, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *recurrenceConverter[C]) serialize(c *C, out *contentline.Container, ctx *Context) error {
	for _, p := range r.parts {
		if err := p.serialize(c, out, ctx); err != nil {
			return err
		}
	}
	return nil
}
