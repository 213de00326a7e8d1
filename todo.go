package ics

import (
	"strconv"
	"sync"
	"time"

	"github.com/arran4/golang-icalendar/contentline"
)

// Todo is a VTODO. Its timespan ends in DUE.
type Todo struct {
	CalendarEntry
	PercentComplete *int
	Priority        *int
	Completed       time.Time
}

// NewTodo returns a to-do with the given UID.
func NewTodo(uid string) *Todo {
	t := &Todo{}
	t.UID = uid
	t.Timespan = Timespan{kind: EndKindDue}
	return t
}

// Due is the effective due time, or the zero time.
func (t *Todo) Due() time.Time {
	return t.Timespan.Due()
}

func (t *Todo) SetStartAt(at time.Time) error {
	return setTimespan(&t.Timespan, EndKindDue, WithBegin(at))
}

// SetDueAt sets an explicit due time, replacing any duration.
func (t *Todo) SetDueAt(at time.Time) error {
	return setTimespan(&t.Timespan, EndKindDue, WithEnd(at))
}

func (t *Todo) SetDuration(d time.Duration) error {
	return setTimespan(&t.Timespan, EndKindDue, WithDuration(d))
}

func (t *Todo) SetPercentComplete(p int) {
	t.PercentComplete = &p
}

func (t *Todo) SetPriority(p int) {
	t.Priority = &p
}

func checkRange(ctx *Context, property Property, v *int, min, max int) error {
	if v == nil || (*v >= min && *v <= max) {
		return nil
	}
	return ctx.schemaError(string(property), strconv.Itoa(*v)+" is not between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
}

var todoSchema = sync.OnceValue(func() *schema[Todo] {
	entry := func(t *Todo) *CalendarEntry { return &t.CalendarEntry }
	converters := append(entryConverters(EndKindDue, entry),
		optionalField(PropertyPercentComplete, func(t *Todo) **int { return &t.PercentComplete }, IntegerCodec),
		optionalField(PropertyPriority, func(t *Todo) **int { return &t.Priority }, IntegerCodec),
		scalarField(PropertyCompleted, func(t *Todo) *time.Time { return &t.Completed }, DateTimeCodec),
	)
	s := newSchema[Todo](string(ComponentVTodo), converters...)
	s.prePopulate = func(t *Todo, _ *contentline.Container, _ *Context) error {
		t.Timespan = Timespan{kind: EndKindDue}
		return nil
	}
	s.validate = func(t *Todo, ctx *Context) error {
		if err := checkRange(ctx, PropertyPercentComplete, t.PercentComplete, 0, 100); err != nil {
			return err
		}
		if err := checkRange(ctx, PropertyPriority, t.Priority, 0, 9); err != nil {
			return err
		}
		return validateStatus(t.Status, todoStatuses, ctx)
	}
	return s
})

// TodoFromContainer binds a VTODO container.
func TodoFromContainer(c *contentline.Container, ops ...any) (*Todo, error) {
	return bindContainer(todoSchema(), c, ops)
}

// ToContainer renders the to-do as a VTODO container.
func (t *Todo) ToContainer(ops ...any) (*contentline.Container, error) {
	return renderContainer(todoSchema(), t, ops)
}

func (t *Todo) Serialize(ops ...any) string {
	return serializeComponent(todoSchema(), t, ops)
}
