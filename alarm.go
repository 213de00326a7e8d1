package ics

import (
	"strings"
	"sync"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
)

// Alarm is a VALARM. The header fields are shared by every kind of alarm;
// what the alarm does is described by Action.
type Alarm struct {
	ComponentBase
	Trigger  Trigger
	Repeat   *int
	Duration time.Duration
	Action   AlarmAction
}

// AlarmAction is one of *AudioAlarm, *DisplayAlarm, *EmailAlarm, *NoneAlarm
// or *CustomAlarm.
type AlarmAction interface {
	// ActionName is the value of the ACTION property.
	ActionName() string
	alarmAction()
}

type AudioAlarm struct {
	Attach *Attachment
}

type DisplayAlarm struct {
	Description string
}

type EmailAlarm struct {
	Summary     string
	Description string
	Attendees   []Attendee
	Attachments []Attachment
}

// NoneAlarm is the RFC 9074 alarm that does nothing.
type NoneAlarm struct{}

// CustomAlarm is an alarm with an action this package does not know. Its
// properties are kept as extras.
type CustomAlarm struct {
	Action string
}

func (*AudioAlarm) ActionName() string   { return string(ActionAudio) }
func (*DisplayAlarm) ActionName() string { return string(ActionDisplay) }
func (*EmailAlarm) ActionName() string   { return string(ActionEmail) }
func (*NoneAlarm) ActionName() string    { return string(ActionNone) }
func (a *CustomAlarm) ActionName() string {
	return a.Action
}

func (*AudioAlarm) alarmAction()   {}
func (*DisplayAlarm) alarmAction() {}
func (*EmailAlarm) alarmAction()   {}
func (*NoneAlarm) alarmAction()    {}
func (*CustomAlarm) alarmAction()  {}

// NewAlarmAction returns the empty variant for an ACTION value.
func NewAlarmAction(action string) AlarmAction {
	switch Action(strings.ToUpper(action)) {
	case ActionAudio:
		return &AudioAlarm{}
	case ActionDisplay:
		return &DisplayAlarm{}
	case ActionEmail:
		return &EmailAlarm{}
	case ActionNone:
		return &NoneAlarm{}
	}
	return &CustomAlarm{Action: action}
}

// actionConverter binds ACTION. The variant is chosen before the other
// lines are bound, so that the variant fields can claim theirs.
type actionConverter struct{}

func (actionConverter) lines() []string      { return []string{string(PropertyAction)} }
func (actionConverter) containers() []string { return nil }
func (actionConverter) priority() int        { return 70 }

func selectAction(a *Alarm, c *contentline.Container, ctx *Context) error {
	lines := c.Lines(string(PropertyAction))
	switch {
	case len(lines) == 0:
		return ctx.schemaError(string(PropertyAction), "required property is missing")
	case len(lines) > 1:
		return ctx.schemaError(string(PropertyAction), "must not occur more than once")
	}
	text, err := FromText(lines[0].Value)
	if err != nil {
		return &ValueError{Property: string(PropertyAction), Type: ValueDataTypeText, Value: lines[0].Value, Err: err}
	}
	a.Action = NewAlarmAction(text)
	return nil
}

func (actionConverter) populate(a *Alarm, item contentline.Item, _ *Context) (bool, error) {
	cl := item.(contentline.ContentLine)
	a.setExtraParams(fieldName(string(PropertyAction)), []contentline.Params{cl.Params.Clone()})
	return true, nil
}

func (actionConverter) postPopulate(*Alarm, *Context) error { return nil }

func (actionConverter) serialize(a *Alarm, out *contentline.Container, ctx *Context) error {
	if a.Action == nil {
		return ctx.schemaError(string(PropertyAction), "required property is missing")
	}
	extras := a.extraParams(fieldName(string(PropertyAction)))
	if len(extras) != 1 {
		extras = nil
	}
	return appendValues(out, string(PropertyAction), []any{a.Action.ActionName()}, extras, []Codec{TextCodec}, false, ctx)
}

func isAction[T AlarmAction](a *Alarm) bool {
	_, ok := a.Action.(T)
	return ok
}

var alarmSchema = sync.OnceValue(func() *schema[Alarm] {
	audio := func(a *Alarm) *AudioAlarm { return a.Action.(*AudioAlarm) }
	display := func(a *Alarm) *DisplayAlarm { return a.Action.(*DisplayAlarm) }
	email := func(a *Alarm) *EmailAlarm { return a.Action.(*EmailAlarm) }
	s := newSchema[Alarm](string(ComponentVAlarm),
		actionConverter{},
		exactField(PropertyTrigger, func(a *Alarm) *Trigger { return &a.Trigger }, triggerDurationCodec, triggerDateTimeCodec).
			withPriority(60),
		optionalField(PropertyRepeat, func(a *Alarm) **int { return &a.Repeat }, IntegerCodec),
		scalarField(PropertyDuration, func(a *Alarm) *time.Duration { return &a.Duration }, DurationCodec),
		guard(isAction[*AudioAlarm], optionalField(PropertyAttach, func(a *Alarm) **Attachment { return &audio(a).Attach },
			attachURICodec, attachBinaryCodec)),
		guard(isAction[*DisplayAlarm], scalarField(PropertyDescription, func(a *Alarm) *string { return &display(a).Description }, TextCodec).
			require()),
		guard(isAction[*EmailAlarm], scalarField(PropertySummary, func(a *Alarm) *string { return &email(a).Summary }, TextCodec).
			require()),
		guard(isAction[*EmailAlarm], scalarField(PropertyDescription, func(a *Alarm) *string { return &email(a).Description }, TextCodec).
			require()),
		guard(isAction[*EmailAlarm], listField(PropertyAttendee, false, func(a *Alarm) *[]Attendee { return &email(a).Attendees }, attendeeCodec).
			require()),
		guard(isAction[*EmailAlarm], listField(PropertyAttach, false, func(a *Alarm) *[]Attachment { return &email(a).Attachments },
			attachURICodec, attachBinaryCodec)),
	)
	s.prePopulate = selectAction
	s.validate = func(a *Alarm, ctx *Context) error {
		switch {
		case a.Repeat != nil && *a.Repeat < 0:
			return ctx.schemaError(string(PropertyRepeat), "must not be negative")
		case a.Duration < 0:
			return ctx.schemaError(string(PropertyDuration), "must not be negative")
		case a.Repeat != nil && *a.Repeat > 0 && a.Duration == 0:
			return ctx.schemaError(string(PropertyRepeat), "requires DURATION")
		}
		return nil
	}
	return s
})

// AlarmFromContainer binds a VALARM container.
func AlarmFromContainer(c *contentline.Container, ops ...any) (*Alarm, error) {
	return bindContainer(alarmSchema(), c, ops)
}

// ToContainer renders the alarm as a VALARM container.
func (a *Alarm) ToContainer(ops ...any) (*contentline.Container, error) {
	return renderContainer(alarmSchema(), a, ops)
}
