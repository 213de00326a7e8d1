package ics

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoRoundTrip(t *testing.T) {
	c := mustContainer(t,
		"BEGIN:VTODO",
		"UID:todo@example.com",
		"DTSTAMP:20240101T120000Z",
		"DUE;VALUE=DATE:20240115",
		"SUMMARY:Submit report",
		"STATUS:NEEDS-ACTION",
		"PERCENT-COMPLETE:40",
		"PRIORITY:1",
		"END:VTODO",
	)
	todo, err := TodoFromContainer(c)
	require.NoError(t, err)
	assert.Equal(t, EndKindDue, todo.Timespan.Kind())
	assert.True(t, todo.Begin().IsZero())
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 15}.Time(), todo.Due())
	assert.True(t, todo.Timespan.IsAllDay())
	assert.Equal(t, ObjectStatusNeedsAction, todo.Status)
	require.NotNil(t, todo.PercentComplete)
	assert.Equal(t, 40, *todo.PercentComplete)
	require.NotNil(t, todo.Priority)
	assert.Equal(t, 1, *todo.Priority)

	out, err := todo.ToContainer()
	require.NoError(t, err)
	assert.Equal(t, c.String(), out.String())
}

func TestTodoValidation(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "percent above 100", line: "PERCENT-COMPLETE:101"},
		{name: "priority above 9", line: "PRIORITY:10"},
		{name: "event status", line: "STATUS:TENTATIVE"},
		{name: "due and duration", line: "DURATION:PT1H"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TodoFromContainer(mustContainer(t,
				"BEGIN:VTODO",
				"UID:x",
				"DTSTAMP:20240101T120000Z",
				"DTSTART:20240101T120000Z",
				"DUE:20240102T120000Z",
				tt.line,
				"END:VTODO",
			))
			var se *SchemaError
			assert.True(t, errors.As(err, &se), "got %v", err)
		})
	}
}

func TestTodoBuild(t *testing.T) {
	todo := NewTodo("build@example.com")
	require.NoError(t, todo.SetStartAt(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, todo.SetDuration(48*time.Hour))
	todo.SetPercentComplete(0)
	todo.SetPriority(5)
	assert.Equal(t, time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC), todo.Due())
	assert.Equal(t, `BEGIN:VTODO
UID:build@example.com
DTSTAMP:20240102T030405Z
DTSTART:20240201T080000Z
DURATION:P2D
PERCENT-COMPLETE:0
PRIORITY:5
END:VTODO
`, serializeUnix(todo))
}

func TestTodoOrdering(t *testing.T) {
	early := NewTodo("early")
	require.NoError(t, early.SetDueAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	late := NewTodo("late")
	require.NoError(t, late.SetDueAt(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, late.SetStartAt(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, early.Timespan.Less(late.Timespan))
	assert.False(t, late.Timespan.Less(early.Timespan))
}
