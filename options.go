package ics

import (
	"reflect"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/arran4/golang-icalendar/tzdb"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TimezoneDatabase resolves a TZID to a VTIMEZONE container. Lookup returns
// an error wrapping tzdb.ErrNotFound for unknown identifiers.
type TimezoneDatabase interface {
	Lookup(tzid string) (*contentline.Container, error)
}

// LocationDatabase is implemented by databases that can also hand out a
// *time.Location directly, avoiding a round trip through the VTIMEZONE.
type LocationDatabase interface {
	Location(tzid string) (*time.Location, error)
}

// Clock supplies the current time for defaulted DTSTAMP values.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// UIDGenerator supplies UIDs for components that lack one.
type UIDGenerator interface {
	NewUID() string
}

// UUIDGenerator generates random version 4 UUIDs qualified with
// "@<Prefix>.org".
type UUIDGenerator struct {
	Prefix string
}

func (g UUIDGenerator) NewUID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = DefaultUIDPrefix
	}
	return uuid.New().String() + "@" + prefix + ".org"
}

// DefaultUIDPrefix qualifies generated UIDs.
const DefaultUIDPrefix = "golang-ical"

type WithLineLength int
type WithNewLine string

// The WithNewLine constants select the newline style used when serializing
// calendars. RFC 5545 section 3.1 requires lines to be delimited by CRLF
// ("\r\n"), which is the default.
const (
	// WithNewLineUnix uses LF line endings.
	WithNewLineUnix WithNewLine = "\n"
	// WithNewLineWindows uses CRLF line endings as required by RFC 5545 section 3.1.
	WithNewLineWindows WithNewLine = "\r\n"
)

// SerializationConfiguration controls how calendars and components are written
// out. MaxLength is the folding width in octets; RFC 5545 section 3.1
// recommends 75. NewLine selects the line termination sequence.
type SerializationConfiguration struct {
	MaxLength int
	NewLine   string
}

type withLogger struct{ logrus.FieldLogger }
type withDatabase struct{ TimezoneDatabase }
type withClock struct{ Clock }
type withUIDs struct{ UIDGenerator }

// WithLogger routes warnings to l.
func WithLogger(l logrus.FieldLogger) any {
	return withLogger{l}
}

// WithTimezoneDatabase replaces the built-in time zone database.
func WithTimezoneDatabase(db TimezoneDatabase) any {
	return withDatabase{db}
}

// WithClock replaces the clock used for defaulted DTSTAMP values.
func WithClock(c Clock) any {
	return withClock{c}
}

// WithUIDGenerator replaces the generator used for missing UIDs.
func WithUIDGenerator(g UIDGenerator) any {
	return withUIDs{g}
}

type options struct {
	serialization *SerializationConfiguration
	logger        logrus.FieldLogger
	database      TimezoneDatabase
	clock         Clock
	uids          UIDGenerator
}

// parseOps interprets the optional arguments accepted by the parse and
// serialize functions. Unsupported types return an error.
func parseOps(ops []any) (*options, error) {
	o := &options{
		serialization: defaultSerializationOptions(),
		logger:        logrus.StandardLogger(),
		database:      tzdb.Default,
		clock:         systemClock{},
		uids:          UUIDGenerator{},
	}
	for opi, op := range ops {
		switch op := op.(type) {
		case WithLineLength:
			o.serialization.MaxLength = int(op)
		case WithNewLine:
			o.serialization.NewLine = string(op)
		case *SerializationConfiguration:
			o.serialization = op
		case withLogger:
			o.logger = op.FieldLogger
		case withDatabase:
			o.database = op.TimezoneDatabase
		case withClock:
			o.clock = op.Clock
		case withUIDs:
			o.uids = op.UIDGenerator
		case error:
			return nil, op
		default:
			return nil, errors.Errorf("unknown op %d of type %s", opi, reflect.TypeOf(op))
		}
	}
	return o, nil
}

// defaultSerializationOptions returns the default values used for calendar
// serialization: 75 octet lines terminated by CRLF.
func defaultSerializationOptions() *SerializationConfiguration {
	return &SerializationConfiguration{
		MaxLength: contentline.DefaultWidth,
		NewLine:   contentline.CRLF,
	}
}
