package ics

import (
	"sync"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
)

// Event is a VEVENT.
type Event struct {
	CalendarEntry
	Classification Classification
	// Transparent is TRANSP; nil when absent, which means OPAQUE.
	Transparent *bool
	Organizer   *Organizer
	Geo         *Geo
	Attendees   []Attendee
	Categories  []string
}

// NewEvent returns an event with the given UID. The DTSTAMP is set when the
// event is written.
func NewEvent(uid string) *Event {
	e := &Event{}
	e.UID = uid
	return e
}

// SetStartAt moves the start of the event, keeping its end or duration.
func (e *Event) SetStartAt(t time.Time) error {
	return setTimespan(&e.Timespan, EndKindEnd, WithBegin(t))
}

// SetEndAt sets an explicit end, replacing any duration.
func (e *Event) SetEndAt(t time.Time) error {
	return setTimespan(&e.Timespan, EndKindEnd, WithEnd(t))
}

// SetDuration sets an explicit duration, replacing any end. The event needs
// a start.
func (e *Event) SetDuration(d time.Duration) error {
	if e.Timespan.Begin().IsZero() {
		return ErrStartAndEndDateNotDefined
	}
	return setTimespan(&e.Timespan, EndKindEnd, WithDuration(d))
}

// SetAllDay turns the event into an all-day event covering the days it
// touches.
func (e *Event) SetAllDay() error {
	ts, err := e.Timespan.MakeAllDay()
	if err != nil {
		return err
	}
	e.Timespan = ts
	return nil
}

// AddAttendee adds a mailto attendee and returns it for further changes.
func (e *Event) AddAttendee(email string) *Attendee {
	e.Attendees = append(e.Attendees, NewAttendee(email))
	return &e.Attendees[len(e.Attendees)-1]
}

var eventSchema = sync.OnceValue(func() *schema[Event] {
	entry := func(e *Event) *CalendarEntry { return &e.CalendarEntry }
	converters := append(entryConverters(EndKindEnd, entry),
		scalarField(PropertyClass, func(e *Event) *Classification { return &e.Classification }, classificationCodec),
		optionalField(PropertyTransp, func(e *Event) **bool { return &e.Transparent }, transparencyCodec),
		optionalField(PropertyOrganizer, func(e *Event) **Organizer { return &e.Organizer }, organizerCodec),
		optionalField(PropertyGeo, func(e *Event) **Geo { return &e.Geo }, GeoCodec),
		listField(PropertyAttendee, false, func(e *Event) *[]Attendee { return &e.Attendees }, attendeeCodec),
		listField(PropertyCategories, true, func(e *Event) *[]string { return &e.Categories }, TextCodec),
	)
	s := newSchema[Event](string(ComponentVEvent), converters...)
	s.validate = func(e *Event, ctx *Context) error {
		return validateStatus(e.Status, eventStatuses, ctx)
	}
	return s
})

// EventFromContainer binds a VEVENT container.
func EventFromContainer(c *contentline.Container, ops ...any) (*Event, error) {
	return bindContainer(eventSchema(), c, ops)
}

// ToContainer renders the event as a VEVENT container.
func (e *Event) ToContainer(ops ...any) (*contentline.Container, error) {
	return renderContainer(eventSchema(), e, ops)
}

// Serialize renders the event on its own, mostly useful for debugging.
func (e *Event) Serialize(ops ...any) string {
	return serializeComponent(eventSchema(), e, ops)
}
