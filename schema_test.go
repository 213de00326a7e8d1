package ics

import (
	"testing"

	"github.com/arran4/golang-icalendar/contentline"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ComponentBase
	Name  string
	Count int
	Tags  []string
	Notes []string
}

func widgetSchema() *schema[widget] {
	return newSchema[widget]("X-WIDGET",
		scalarField("X-NAME", func(w *widget) *string { return &w.Name }, TextCodec).require().withPriority(10),
		scalarField("X-COUNT", func(w *widget) *int { return &w.Count }, IntegerCodec),
		listField("X-TAGS", true, func(w *widget) *[]string { return &w.Tags }, TextCodec),
		listField("X-NOTE", false, func(w *widget) *[]string { return &w.Notes }, TextCodec),
	)
}

func populateWidget(t *testing.T, ops []any, lines ...string) (*widget, error) {
	t.Helper()
	o, err := parseOps(ops)
	require.NoError(t, err)
	all := append([]string{"BEGIN:X-WIDGET"}, lines...)
	w := &widget{}
	return w, widgetSchema().populate(w, mustContainer(t, append(all, "END:X-WIDGET")...), newContext(o))
}

func renderWidget(w *widget) (*contentline.Container, error) {
	o, _ := parseOps(nil)
	return widgetSchema().toContainer(w, newContext(o))
}

func TestSchemaRoundTrip(t *testing.T) {
	lines := []string{
		"X-NAME;LANGUAGE=en:Sprocket",
		"X-COUNT:3",
		"X-TAGS:a,b",
		"X-TAGS;X-SOURCE=import:c",
		"X-NOTE:one\\, two",
		"X-NOTE:three",
		"X-UNBOUND:first",
		"BEGIN:X-PART",
		"X-UNBOUND:nested",
		"END:X-PART",
		"X-UNBOUND:last",
	}
	w, err := populateWidget(t, nil, lines...)
	require.NoError(t, err)
	assert.Equal(t, "Sprocket", w.Name)
	assert.Equal(t, 3, w.Count)
	assert.Equal(t, []string{"a", "b", "c"}, w.Tags)
	assert.Equal(t, []string{"one, two", "three"}, w.Notes)
	require.Len(t, w.Extras, 3)
	assert.Equal(t, "X-PART", w.Extras[1].(*contentline.Container).Name)
	lang, ok := w.ExtraParams["x-name"][0].First("LANGUAGE")
	require.True(t, ok)
	assert.Equal(t, "en", lang)

	out, err := renderWidget(w)
	require.NoError(t, err)
	assert.Equal(t, mustContainer(t, append(append([]string{"BEGIN:X-WIDGET"}, lines...), "END:X-WIDGET")...).String(), out.String())
}

func TestSchemaMergesNewListValues(t *testing.T) {
	w := &widget{Name: "n", Tags: []string{"a", "b,c"}, Notes: []string{"x", "y"}}
	out, err := renderWidget(w)
	require.NoError(t, err)
	assert.Equal(t, mustContainer(t,
		"BEGIN:X-WIDGET",
		"X-NAME:n",
		"X-TAGS:a,b\\,c",
		"X-NOTE:x",
		"X-NOTE:y",
		"END:X-WIDGET",
	).String(), out.String())
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		property string
		message  string
	}{
		{name: "missing required", lines: []string{"X-COUNT:1"}, property: "X-NAME", message: "X-WIDGET X-NAME: required property is missing"},
		{name: "repeated scalar", lines: []string{"X-NAME:a", "X-NAME:b"}, property: "X-NAME", message: "X-WIDGET X-NAME: must not occur more than once"},
		{name: "list on scalar", lines: []string{"X-NAME:a", "X-COUNT:1,2"}, property: "X-COUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := populateWidget(t, nil, tt.lines...)
			var se *SchemaError
			if !errors.As(err, &se) {
				// a comma in an INTEGER is a value error
				var ve *ValueError
				require.True(t, errors.As(err, &ve), "got %v", err)
				assert.Equal(t, tt.property, ve.Property)
				return
			}
			assert.Equal(t, tt.property, se.Property)
			if tt.message != "" {
				assert.Equal(t, tt.message, se.Error())
			}
		})
	}
}

func TestSchemaUnsupportedValueType(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	w, err := populateWidget(t, []any{WithLogger(logger)},
		"X-NAME:n",
		"X-COUNT;VALUE=TEXT:many",
		"X-OTHER:kept",
	)
	require.NoError(t, err)
	assert.Zero(t, w.Count)
	require.Len(t, w.Extras, 2)
	assert.Equal(t, "many", w.Extras[0].(contentline.ContentLine).Value)

	var warned, debugged bool
	for _, e := range hook.AllEntries() {
		switch {
		case e.Level == logrus.WarnLevel && e.Data["property"] == "X-COUNT":
			warned = true
			assert.Equal(t, "TEXT", e.Data["value"])
		case e.Level == logrus.DebugLevel && e.Data["property"] == "X-OTHER":
			debugged = true
		}
	}
	assert.True(t, warned)
	assert.True(t, debugged)
}

func TestSchemaExtraParamsMismatch(t *testing.T) {
	w := &widget{Name: "n", Tags: []string{"a"}}
	w.ExtraParams = map[string][]contentline.Params{"x-tags": {nil, nil}}
	_, err := renderWidget(w)
	assert.True(t, errors.Is(err, ErrExtraParamsMismatch), "got %v", err)
}

func TestSchemaMergedParamsMustAgree(t *testing.T) {
	w, err := populateWidget(t, nil, "X-NAME:n", "X-TAGS;X-SOURCE=import:a,b")
	require.NoError(t, err)
	require.Len(t, w.ExtraParams["x-tags"], 2)
	w.ExtraParams["x-tags"][1] = nil
	_, err = renderWidget(w)
	var se *SchemaError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, "X-TAGS", se.Property)
}

func TestExtraText(t *testing.T) {
	var b ComponentBase
	_, err := b.ExtraText("X-WR-CALNAME")
	assert.True(t, errors.Is(err, ErrorPropertyNotFound))
	b.AddExtra(contentline.New("X-WR-CALNAME", `Team\, shared`))
	got, err := b.ExtraText("X-WR-CALNAME")
	require.NoError(t, err)
	assert.Equal(t, "Team, shared", got)
}
