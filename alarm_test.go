package ics

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlarmVariants(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		check  func(t *testing.T, a *Alarm)
		action string
	}{
		{
			name: "display",
			lines: []string{
				"ACTION:DISPLAY",
				"TRIGGER:-PT15M",
				"DESCRIPTION:Breakfast meeting",
			},
			action: "DISPLAY",
			check: func(t *testing.T, a *Alarm) {
				d, ok := a.Action.(*DisplayAlarm)
				require.True(t, ok, "got %T", a.Action)
				assert.Equal(t, "Breakfast meeting", d.Description)
				assert.Equal(t, -15*time.Minute, a.Trigger.Offset)
				assert.False(t, a.Trigger.IsAbsolute())
			},
		},
		{
			name: "email",
			lines: []string{
				"ACTION:EMAIL",
				"TRIGGER;RELATED=END:PT0S",
				"SUMMARY:Wake up",
				"DESCRIPTION:The meeting is over",
				"ATTENDEE:mailto:john_doe@example.com",
				"ATTENDEE:mailto:jane@example.com",
			},
			action: "EMAIL",
			check: func(t *testing.T, a *Alarm) {
				m, ok := a.Action.(*EmailAlarm)
				require.True(t, ok, "got %T", a.Action)
				assert.Equal(t, "Wake up", m.Summary)
				assert.Equal(t, "The meeting is over", m.Description)
				require.Len(t, m.Attendees, 2)
				assert.Equal(t, "jane@example.com", m.Attendees[1].Email())
				assert.Equal(t, "END", a.Trigger.Related)
			},
		},
		{
			name: "audio",
			lines: []string{
				"ACTION:AUDIO",
				"TRIGGER;VALUE=DATE-TIME:19970317T133000Z",
				"REPEAT:4",
				"DURATION:PT15M",
				"ATTACH;FMTTYPE=audio/basic:ftp://example.com/pub/sounds/bell-01.aud",
			},
			action: "AUDIO",
			check: func(t *testing.T, a *Alarm) {
				au, ok := a.Action.(*AudioAlarm)
				require.True(t, ok, "got %T", a.Action)
				require.NotNil(t, au.Attach)
				assert.Equal(t, "audio/basic", au.Attach.FormatType)
				assert.Equal(t, "ftp://example.com/pub/sounds/bell-01.aud", au.Attach.URI.String())
				assert.True(t, a.Trigger.IsAbsolute())
				assert.Equal(t, time.Date(1997, 3, 17, 13, 30, 0, 0, time.UTC), a.Trigger.At)
				require.NotNil(t, a.Repeat)
				assert.Equal(t, 4, *a.Repeat)
				assert.Equal(t, 15*time.Minute, a.Duration)
			},
		},
		{
			name: "custom",
			lines: []string{
				"ACTION:XYZ",
				"TRIGGER:-PT5M",
				"DESCRIPTION:stays an extra",
			},
			action: "XYZ",
			check: func(t *testing.T, a *Alarm) {
				c, ok := a.Action.(*CustomAlarm)
				require.True(t, ok, "got %T", a.Action)
				assert.Equal(t, "XYZ", c.Action)
				assert.Len(t, a.ExtraLines(PropertyDescription), 1)
			},
		},
		{
			name: "explicit zero repeat",
			lines: []string{
				"ACTION:AUDIO",
				"TRIGGER:-PT5M",
				"REPEAT:0",
			},
			action: "AUDIO",
			check: func(t *testing.T, a *Alarm) {
				require.NotNil(t, a.Repeat)
				assert.Equal(t, 0, *a.Repeat)
				assert.Zero(t, a.Duration)
			},
		},
		{
			name: "none",
			lines: []string{
				"ACTION:NONE",
				"TRIGGER;VALUE=DATE-TIME:19760401T005545Z",
			},
			action: "NONE",
			check: func(t *testing.T, a *Alarm) {
				_, ok := a.Action.(*NoneAlarm)
				assert.True(t, ok, "got %T", a.Action)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := append([]string{"BEGIN:VALARM"}, tt.lines...)
			c := mustContainer(t, append(lines, "END:VALARM")...)
			a, err := AlarmFromContainer(c)
			require.NoError(t, err)
			tt.check(t, a)
			assert.Equal(t, tt.action, a.Action.ActionName())

			out, err := a.ToContainer()
			require.NoError(t, err)
			assert.Equal(t, c.String(), out.String())
		})
	}
}

func TestAlarmSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{name: "missing action", lines: []string{"TRIGGER:-PT5M"}},
		{name: "two actions", lines: []string{"ACTION:DISPLAY", "ACTION:AUDIO", "TRIGGER:-PT5M", "DESCRIPTION:x"}},
		{name: "missing trigger", lines: []string{"ACTION:AUDIO"}},
		{name: "display without description", lines: []string{"ACTION:DISPLAY", "TRIGGER:-PT5M"}},
		{name: "email without attendee", lines: []string{"ACTION:EMAIL", "TRIGGER:-PT5M", "SUMMARY:s", "DESCRIPTION:d"}},
		{name: "repeat without duration", lines: []string{"ACTION:AUDIO", "TRIGGER:-PT5M", "REPEAT:2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := append([]string{"BEGIN:VALARM"}, tt.lines...)
			_, err := AlarmFromContainer(mustContainer(t, append(lines, "END:VALARM")...))
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestAddAlarm(t *testing.T) {
	e := NewEvent("alarm@example.com")
	require.NoError(t, e.SetStartAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	a := e.AddAlarm(&DisplayAlarm{Description: "Reminder"})
	a.Trigger = Trigger{Offset: -30 * time.Minute}
	assert.Equal(t, `BEGIN:VEVENT
UID:alarm@example.com
DTSTAMP:20240102T030405Z
DTSTART:20240301T090000Z
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT30M
DESCRIPTION:Reminder
END:VALARM
END:VEVENT
`, serializeUnix(e))
	assert.Equal(t, "30 minutes before start", a.Trigger.String())
}
