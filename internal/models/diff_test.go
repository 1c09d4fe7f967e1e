package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffMapKeepsInsertionOrder(t *testing.T) {
	m := NewDiffMap()
	require.NoError(t, m.Set("status", Changed("OPEN", "RESOLVED")))
	require.NoError(t, m.Set("assignee", Set("marcel")))
	require.NoError(t, m.Set("line", Removed("12")))
	require.NoError(t, m.Set("status", Changed("OPEN", "CLOSED")))

	assert.Equal(t, []string{"status", "assignee", "line"}, m.Names())
	diff, ok := m.Get("status")
	require.True(t, ok)
	assert.Equal(t, "CLOSED", diff.New.String())
}

func TestDiffMapRejectsNoOpAndFrozenWrites(t *testing.T) {
	m := NewDiffMap()
	err := m.Set("severity", Changed("MAJOR", "MAJOR"))
	assert.ErrorIs(t, err, ErrNoOpDiff)
	assert.ErrorIs(t, m.Set("severity", Diff{}), ErrNoOpDiff)
	assert.Error(t, m.Set(" ", Set("x")))

	m.Freeze()
	assert.True(t, m.Frozen())
	assert.ErrorIs(t, m.Set("severity", Set("MAJOR")), ErrFrozenDiffs)
	assert.Equal(t, 0, m.Len())
}

func TestDiffMapAbsentVersusNull(t *testing.T) {
	m := NewDiffMap()
	require.NoError(t, m.Set("assignee", Removed("marcel")))

	diff, ok := m.Get("assignee")
	require.True(t, ok)
	assert.False(t, diff.New.IsPresent())
	assert.Equal(t, "marcel", diff.Old.String())

	_, ok = m.Get("reporter")
	assert.False(t, ok)
}

func TestNilDiffMapIsEmpty(t *testing.T) {
	var m *DiffMap
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Names())
	_, ok := m.Get("x")
	assert.False(t, ok)
}

func TestEncodeAndParseFieldDiffs(t *testing.T) {
	m := NewDiffMap()
	require.NoError(t, m.Set("severity", Changed("MINOR", "MAJOR")))
	require.NoError(t, m.Set("assignee", Set("marcel")))
	require.NoError(t, m.Set("actionPlan", Removed("sprint-1")))

	encoded, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, "severity=MINOR|MAJOR,assignee=marcel,actionPlan=sprint-1|", encoded)

	parsed, err := ParseFieldDiffs(encoded)
	require.NoError(t, err)
	assert.Equal(t, m.Names(), parsed.Names())
	for _, name := range m.Names() {
		want, _ := m.Get(name)
		got, _ := parsed.Get(name)
		assert.Equal(t, want, got, name)
	}
}

func TestNormalizedDiffsSurviveStorage(t *testing.T) {
	cases := map[string]Diff{
		"set":          Set("marcel"),
		"removed":      Removed("sprint-1"),
		"changed":      Changed("MINOR", "MAJOR"),
		"emptied":      Changed("MINOR", ""),
		"filled":       Changed("", "MAJOR"),
		"empty to nil": {Old: Null(), New: Of("")},
	}
	for name, diff := range cases {
		t.Run(name, func(t *testing.T) {
			normalized := diff.Normalized()
			if normalized.IsNoOp() {
				assert.Equal(t, "empty to nil", name)
				return
			}
			m := NewDiffMap()
			require.NoError(t, m.Set("field", normalized))
			encoded, err := m.Encode()
			require.NoError(t, err)

			parsed, err := ParseFieldDiffs(encoded)
			require.NoError(t, err)
			got, ok := parsed.Get("field")
			require.True(t, ok, encoded)
			assert.Equal(t, normalized, got)
		})
	}
}

func TestEncodeRejectsEmptyValues(t *testing.T) {
	for _, diff := range []Diff{Set(""), Removed(""), Changed("", "MAJOR")} {
		m := NewDiffMap()
		require.NoError(t, m.Set("resolution", diff))
		_, err := m.Encode()
		assert.Error(t, err)
	}
}

func TestEncodeRejectsReservedCharacters(t *testing.T) {
	m := NewDiffMap()
	require.NoError(t, m.Set("message", Set("a,b")))
	_, err := m.Encode()
	assert.Error(t, err)
}

func TestParseFieldDiffsSkipsNoOpsAndRejectsGarbage(t *testing.T) {
	parsed, err := ParseFieldDiffs("status=OPEN|OPEN,line=|")
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.Len())

	empty, err := ParseFieldDiffs("")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	_, err = ParseFieldDiffs("no-separator")
	assert.Error(t, err)
}

func TestValueJSON(t *testing.T) {
	raw, err := json.Marshal(ParamChange{Name: "max", Old: Null(), New: Of("10")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"max","old":null,"new":"10"}`, string(raw))

	var decoded ParamChange
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.False(t, decoded.Old.IsPresent())
	assert.Equal(t, Of("10"), decoded.New)
}
