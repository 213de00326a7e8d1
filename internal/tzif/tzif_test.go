package tzif

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLoads(t *testing.T) {
	spring := time.Date(2020, time.March, 29, 1, 0, 0, 0, time.UTC).Unix()
	autumn := time.Date(2020, time.October, 25, 1, 0, 0, 0, time.UTC).Unix()
	data, err := Encode([]Type{
		{Offset: 3600, Name: "CET"},
		{Offset: 7200, IsDST: true, Name: "CEST"},
		{Offset: 3600, Name: "CET"},
	}, []Transition{
		{At: autumn, Type: 2},
		{At: spring, Type: 1},
	})
	require.NoError(t, err)
	loc, err := time.LoadLocationFromTZData("Test/Zone", data)
	require.NoError(t, err)
	assert.Equal(t, "Test/Zone", loc.String())

	for _, tt := range []struct {
		at     time.Time
		name   string
		offset int
		dst    bool
	}{
		{time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC), "CET", 3600, false},
		{time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), "CET", 3600, false},
		{time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC), "CEST", 7200, true},
		{time.Date(2020, time.December, 1, 0, 0, 0, 0, time.UTC), "CET", 3600, false},
	} {
		t.Run(tt.at.String(), func(t *testing.T) {
			in := tt.at.In(loc)
			name, offset := in.Zone()
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.dst, in.IsDST())
		})
	}
}

func TestEncodeWithoutTransitions(t *testing.T) {
	data, err := Encode([]Type{{Offset: -18000, Name: "EST"}}, nil)
	require.NoError(t, err)
	loc, err := time.LoadLocationFromTZData("Fixed", data)
	require.NoError(t, err)
	name, offset := time.Date(2021, time.May, 5, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, "EST", name)
	assert.Equal(t, -18000, offset)
}

func TestEncodeNoTypes(t *testing.T) {
	data, err := Encode(nil, nil)
	require.NoError(t, err)
	loc, err := time.LoadLocationFromTZData("Empty", data)
	require.NoError(t, err)
	_, offset := time.Date(2021, time.May, 5, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, 0, offset)
}

func TestEncodeSharesAbbreviations(t *testing.T) {
	types := make([]Type, 200)
	for i := range types {
		types[i] = Type{Offset: 3600 * (i % 2), Name: strings.Repeat("X", 20)}
	}
	data, err := Encode(types, []Transition{{At: 0, Type: 199}})
	require.NoError(t, err)
	loc, err := time.LoadLocationFromTZData("Shared", data)
	require.NoError(t, err)
	name, offset := time.Date(2021, time.May, 5, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, strings.Repeat("X", 20), name)
	assert.Equal(t, 3600, offset)
}

func TestEncodeLimits(t *testing.T) {
	long := make([]Type, 20)
	for i := range long {
		long[i] = Type{Name: fmt.Sprintf("ZONE%02d%s", i, strings.Repeat("X", 14))}
	}
	tests := []struct {
		name        string
		types       []Type
		transitions []Transition
		err         error
	}{
		{name: "long abbreviations", types: long, err: ErrAbbreviationsTooLong},
		{name: "too many types", types: make([]Type, 257), err: ErrTooManyTypes},
		{name: "unknown type", types: []Type{{Name: "A"}}, transitions: []Transition{{At: 0, Type: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.types, tt.transitions)
			require.Error(t, err)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
			}
		})
	}
}
