// Package tzif encodes time zone rules as version 2 TZif data (RFC 8536), the
// format time.LoadLocationFromTZData reads.
package tzif

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrTooManyTypes is returned when more than 256 local time types are
	// given.
	ErrTooManyTypes = errors.New("tzif: more than 256 local time types")
	// ErrAbbreviationsTooLong is returned when an abbreviation starts past
	// the 255th byte of the abbreviation table.
	ErrAbbreviationsTooLong = errors.New("tzif: abbreviation table too long")
)

// Type is a local time type.
type Type struct {
	// Offset is in seconds east of UTC.
	Offset int
	IsDST  bool
	Name   string
}

// Transition switches to Types[Type] at At, in seconds since the Unix epoch.
type Transition struct {
	At   int64
	Type int
}

// Encode returns TZif data for the given types and transitions. Types[0] is
// in effect before the first transition. Transitions are sorted by time.
// Repeated abbreviations share one entry of the abbreviation table.
func Encode(types []Type, transitions []Transition) ([]byte, error) {
	if len(types) == 0 {
		types = []Type{{Name: "UTC"}}
	}
	if len(types) > 256 {
		return nil, errors.Wrapf(ErrTooManyTypes, "got %d", len(types))
	}
	for _, tr := range transitions {
		if tr.Type < 0 || tr.Type >= len(types) {
			return nil, errors.Errorf("tzif: transition at %d refers to type %d of %d", tr.At, tr.Type, len(types))
		}
	}
	transitions = append([]Transition(nil), transitions...)
	sort.SliceStable(transitions, func(i, j int) bool {
		return transitions[i].At < transitions[j].At
	})

	var chars []byte
	index := map[string]int{}
	for _, t := range types {
		if _, ok := index[t.Name]; !ok {
			if len(chars) > 255 {
				return nil, errors.Wrapf(ErrAbbreviationsTooLong, "at %q", t.Name)
			}
			index[t.Name] = len(chars)
			chars = append(append(chars, t.Name...), 0)
		}
	}

	b := &bytes.Buffer{}
	header := func(timecnt int) {
		b.WriteString("TZif2")
		b.Write(make([]byte, 15))
		for _, n := range []int{0, 0, 0, timecnt, len(types), len(chars)} {
			_ = binary.Write(b, binary.BigEndian, uint32(n))
		}
	}
	typeRecords := func() {
		for _, t := range types {
			_ = binary.Write(b, binary.BigEndian, int32(t.Offset))
			if t.IsDST {
				b.WriteByte(1)
			} else {
				b.WriteByte(0)
			}
			b.WriteByte(byte(index[t.Name]))
		}
		b.Write(chars)
	}

	// The version 1 block carries no transitions; readers that understand
	// version 2 skip it.
	header(0)
	typeRecords()

	header(len(transitions))
	for _, tr := range transitions {
		_ = binary.Write(b, binary.BigEndian, tr.At)
	}
	for _, tr := range transitions {
		b.WriteByte(byte(tr.Type))
	}
	typeRecords()
	b.WriteString("\n\n")
	return b.Bytes(), nil
}
