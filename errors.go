package ics

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrStartAndEndDateNotDefined = errors.New("start time and end time not defined")
	// ErrorPropertyNotFound is the error returned if the requested valid
	// property is not set.
	ErrorPropertyNotFound = errors.New("property not found")
	// ErrNoCalendar is returned by ParseCalendar when the input holds no
	// VCALENDAR.
	ErrNoCalendar = errors.New("no VCALENDAR found")
	// ErrMultipleCalendars is returned by ParseCalendar when the input holds
	// more than one VCALENDAR. Use ParseCalendars for such input.
	ErrMultipleCalendars = errors.New("more than one VCALENDAR found")
	// ErrInvalidTimespan wraps every Timespan invariant violation.
	ErrInvalidTimespan = errors.New("invalid timespan")
	ErrExtraParamsMismatch = errors.New("extra parameters do not line up with values")
)

// ValueError reports a value that its codec rejected.
type ValueError struct {
	Property string
	Type     ValueDataType
	Value    string
	Err      error
}

func (e *ValueError) Error() string {
	prop := e.Property
	if prop == "" {
		prop = "value"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid %s %q: %v", prop, e.Type, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: invalid %s %q", prop, e.Type, e.Value)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

func valueErrorf(t ValueDataType, value string, format string, args ...any) *ValueError {
	return &ValueError{Type: t, Value: value, Err: fmt.Errorf(format, args...)}
}

// SchemaError reports a component that does not satisfy its schema: a
// required property is missing, a property occurs too often or mutually
// exclusive properties were combined.
type SchemaError struct {
	Component string
	Property  string
	Msg       string
	Err       error
}

func (e *SchemaError) Error() string {
	s := e.Component
	if e.Property != "" {
		s += " " + e.Property
	}
	s += ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// TimezoneError reports a TZID that could not be resolved.
type TimezoneError struct {
	TZID string
	Err  error
}

func (e *TimezoneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve TZID %q: %v", e.TZID, e.Err)
	}
	return fmt.Sprintf("cannot resolve TZID %q", e.TZID)
}

func (e *TimezoneError) Unwrap() error {
	return e.Err
}
