package ics

import (
	"net/url"
	"strings"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
)

// adaptCodec presents the values of a base codec as T.
type adaptCodec[T any] struct {
	base Codec
	// to converts a parsed base value.
	to func(v any, params *contentline.Params) (T, error)
	// from converts back to a base value. ok is false when the base codec
	// cannot represent v.
	from func(v T, params *contentline.Params) (any, bool)
}

func (a adaptCodec[T]) Type() ValueDataType { return a.base.Type() }

func (a adaptCodec[T]) Accepts(v any) bool {
	t, ok := v.(T)
	if !ok {
		return false
	}
	_, ok = a.from(t, &contentline.Params{})
	return ok
}

func (a adaptCodec[T]) Parse(s string, params *contentline.Params, ctx *Context) (any, error) {
	v, err := a.base.Parse(s, params, ctx)
	if err != nil {
		return nil, err
	}
	return a.to(v, params)
}

func (a adaptCodec[T]) Serialize(v any, params *contentline.Params, ctx *Context) (string, error) {
	bv, _ := a.from(v.(T), params)
	return a.base.Serialize(bv, params, ctx)
}

// enumCodec reads TEXT values as a string enumeration. Values are kept as
// written; validation belongs to the component.
func enumCodec[T ~string]() Codec {
	return adaptCodec[T]{
		base: TextCodec,
		to: func(v any, _ *contentline.Params) (T, error) {
			return T(v.(string)), nil
		},
		from: func(v T, _ *contentline.Params) (any, bool) {
			return string(v), true
		},
	}
}

var (
	objectStatusCodec   = enumCodec[ObjectStatus]()
	classificationCodec = enumCodec[Classification]()
	methodCodec         = enumCodec[Method]()
)

// transparencyCodec reads TRANSP as whether the event is transparent.
var transparencyCodec Codec = adaptCodec[bool]{
	base: TextCodec,
	to: func(v any, _ *contentline.Params) (bool, error) {
		switch s := v.(string); strings.ToUpper(s) {
		case string(TransparencyTransparent):
			return true, nil
		case string(TransparencyOpaque):
			return false, nil
		default:
			return false, valueErrorf(ValueDataTypeText, s, "expected OPAQUE or TRANSPARENT")
		}
	},
	from: func(v bool, _ *contentline.Params) (any, bool) {
		if v {
			return string(TransparencyTransparent), true
		}
		return string(TransparencyOpaque), true
	},
}

func attachmentParams(a *Attachment, params *contentline.Params) {
	if vs, ok := params.Pop(string(ParameterFmttype)); ok && len(vs) > 0 {
		a.FormatType = vs[0].Value
	}
}

func attachmentToParams(a Attachment, params *contentline.Params) {
	if a.FormatType != "" {
		params.Set(string(ParameterFmttype), contentline.Raw(a.FormatType))
	}
}

var (
	attachURICodec Codec = adaptCodec[Attachment]{
		base: URICodec,
		to: func(v any, params *contentline.Params) (Attachment, error) {
			a := Attachment{URI: v.(*url.URL)}
			attachmentParams(&a, params)
			return a, nil
		},
		from: func(a Attachment, params *contentline.Params) (any, bool) {
			attachmentToParams(a, params)
			return a.URI, a.URI != nil
		},
	}
	attachBinaryCodec Codec = adaptCodec[Attachment]{
		base: BinaryCodec,
		to: func(v any, params *contentline.Params) (Attachment, error) {
			a := Attachment{Data: v.([]byte)}
			attachmentParams(&a, params)
			return a, nil
		},
		from: func(a Attachment, params *contentline.Params) (any, bool) {
			attachmentToParams(a, params)
			return a.Data, a.URI == nil && a.Data != nil
		},
	}
)

// Trigger is the TRIGGER of an alarm: either an offset relative to the start
// or end of the parent component, or an absolute UTC time.
type Trigger struct {
	Offset time.Duration
	// Related is START, END or empty, which means START.
	Related string
	At      time.Time
}

// IsAbsolute reports whether the trigger is a point in time.
func (t Trigger) IsAbsolute() bool {
	return !t.At.IsZero()
}

func (t Trigger) String() string {
	if t.IsAbsolute() {
		return t.At.Format(time.RFC3339)
	}
	related := "start"
	if strings.EqualFold(t.Related, "END") {
		related = "end"
	}
	if t.Offset < 0 {
		return durationString(-t.Offset) + " before " + related
	}
	return durationString(t.Offset) + " after " + related
}

var (
	triggerDurationCodec Codec = adaptCodec[Trigger]{
		base: DurationCodec,
		to: func(v any, params *contentline.Params) (Trigger, error) {
			t := Trigger{Offset: v.(time.Duration)}
			if vs, ok := params.Pop(string(ParameterRelated)); ok && len(vs) > 0 {
				t.Related = strings.ToUpper(vs[0].Value)
				if t.Related != "START" && t.Related != "END" {
					return Trigger{}, valueErrorf(ValueDataTypeDuration, vs[0].Value, "RELATED must be START or END")
				}
			}
			return t, nil
		},
		from: func(t Trigger, params *contentline.Params) (any, bool) {
			if t.Related != "" {
				params.Set(string(ParameterRelated), contentline.Raw(t.Related))
			}
			return t.Offset, !t.IsAbsolute()
		},
	}
	triggerDateTimeCodec Codec = adaptCodec[Trigger]{
		base: DateTimeCodec,
		to: func(v any, _ *contentline.Params) (Trigger, error) {
			return Trigger{At: v.(time.Time)}, nil
		},
		from: func(t Trigger, _ *contentline.Params) (any, bool) {
			return t.At.UTC(), t.IsAbsolute()
		},
	}
)

// RecurrenceDate is one RDATE, EXDATE or RECURRENCE-ID value: a date-time,
// a date or, for RDATE only, a period.
type RecurrenceDate struct {
	Time   time.Time
	Date   Date
	Period *Period
}

// Start returns the instant the value denotes. Dates are floating
// midnights.
func (r RecurrenceDate) Start() time.Time {
	switch {
	case r.Period != nil:
		return r.Period.Start
	case !r.Date.IsZero():
		return r.Date.Time()
	}
	return r.Time
}

var (
	recurrenceDateTimeCodec Codec = adaptCodec[RecurrenceDate]{
		base: DateTimeCodec,
		to: func(v any, _ *contentline.Params) (RecurrenceDate, error) {
			return RecurrenceDate{Time: v.(time.Time)}, nil
		},
		from: func(r RecurrenceDate, _ *contentline.Params) (any, bool) {
			return r.Time, r.Period == nil && r.Date.IsZero() && !r.Time.IsZero()
		},
	}
	recurrenceDateCodec Codec = adaptCodec[RecurrenceDate]{
		base: DateCodec,
		to: func(v any, _ *contentline.Params) (RecurrenceDate, error) {
			return RecurrenceDate{Date: v.(Date)}, nil
		},
		from: func(r RecurrenceDate, _ *contentline.Params) (any, bool) {
			return r.Date, r.Period == nil && !r.Date.IsZero()
		},
	}
	recurrencePeriodCodec Codec = adaptCodec[RecurrenceDate]{
		base: PeriodCodec,
		to: func(v any, _ *contentline.Params) (RecurrenceDate, error) {
			p := v.(Period)
			return RecurrenceDate{Period: &p}, nil
		},
		from: func(r RecurrenceDate, _ *contentline.Params) (any, bool) {
			if r.Period == nil {
				return nil, false
			}
			return *r.Period, true
		},
	}
)
