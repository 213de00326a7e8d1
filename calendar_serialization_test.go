package ics

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCalendar_ReSerialization(t *testing.T) {
	testDir := "testdata/serialization"
	expectedDir := filepath.Join(testDir, "expected")
	actualDir := filepath.Join(testDir, "actual")

	testFileNames := []string{
		"input1.ics",
		"input2.ics",
		"input3.ics",
	}

	for _, filename := range testFileNames {
		t.Run(fmt.Sprintf("compare serialized -> deserialized -> serialized: %s", filename), func(t *testing.T) {
			//given
			originalSerializedCal, err := os.ReadFile(filepath.Join(testDir, filename))
			require.NoError(t, err)

			//when
			deserializedCal, err := ParseCalendar(bytes.NewReader(originalSerializedCal))
			require.NoError(t, err)
			serializedCal := deserializedCal.Serialize()

			//then
			expectedCal, err := os.ReadFile(filepath.Join(expectedDir, filename))
			require.NoError(t, err)
			if diff := cmp.Diff(string(expectedCal), serializedCal); diff != "" {
				err = os.MkdirAll(actualDir, 0755)
				if err != nil {
					t.Logf("failed to create actual dir: %v", err)
				}
				err = os.WriteFile(filepath.Join(actualDir, filename), []byte(serializedCal), 0644)
				if err != nil {
					t.Logf("failed to write actual file: %v", err)
				}
				t.Error(diff)
			}
		})

		t.Run(fmt.Sprintf("compare deserialized -> serialized -> deserialized: %s", filename), func(t *testing.T) {
			//given
			loadIcsContent, err := os.ReadFile(filepath.Join(testDir, filename))
			require.NoError(t, err)
			originalDeserializedCal, err := ParseCalendar(bytes.NewReader(loadIcsContent))
			require.NoError(t, err)

			//when
			serializedCal := originalDeserializedCal.Serialize()
			deserializedCal, err := ParseCalendar(strings.NewReader(serializedCal))
			require.NoError(t, err)

			//then
			require.Len(t, deserializedCal.Events, len(originalDeserializedCal.Events))
			for i, e := range originalDeserializedCal.Events {
				again := deserializedCal.Events[i]
				if diff := cmp.Diff(e.UID, again.UID); diff != "" {
					t.Error(diff)
				}
				if !e.Begin().Equal(again.Begin()) || !e.End().Equal(again.End()) {
					t.Errorf("%s: timespan changed from %v to %v", e.UID, e.Timespan, again.Timespan)
				}
			}
			if diff := cmp.Diff(serializedCal, deserializedCal.Serialize()); diff != "" {
				t.Error(diff)
			}
		})
	}
}
