package sphere

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNames(t *testing.T) {
	assert.Equal(t, "STABLE", StateStable.String())
	assert.Equal(t, "FLOAT", StateFloat.String())
	assert.Equal(t, "FREEZE", StateFreeze.String())
	assert.Equal(t, "DISSOLVE", StateDissolve.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
	assert.Equal(t, "UNKNOWN", State(-1).String())
}

func TestParseState(t *testing.T) {
	for _, s := range States() {
		got, err := ParseState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseState(" dissolve ")
	require.NoError(t, err)
	assert.Equal(t, StateDissolve, got)

	_, err = ParseState("MELTED")
	assert.Error(t, err)
}

func TestParseEventKind(t *testing.T) {
	tests := map[string]EventKind{
		"INFO":          EventInfo,
		"contradiction": EventContradiction,
		"Meaning_Over":  EventMeaningOver,
		"THREAT":        EventThreat,
		"rest":          EventRest,
	}
	for name, want := range tests {
		got, err := ParseEventKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := ParseEventKind("NAP")
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN", EventKind(7).String())
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent("  THREAT   500 ")
	require.NoError(t, err)
	assert.Equal(t, Event{Kind: EventThreat, Intensity: 500}, ev)
	assert.Equal(t, "THREAT 500", ev.String())

	for _, line := range []string{"", "INFO", "INFO 1 2", "NAP 10", "INFO ten", "INFO 30x", "INFO -5", "INFO 1001"} {
		_, err := ParseEvent(line)
		assert.ErrorIs(t, err, ErrInvalidEvent, "line %q", line)
	}
}

func TestEventJSONUsesNames(t *testing.T) {
	data, err := json.Marshal(Event{Kind: EventMeaningOver, Intensity: 800})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"MEANING_OVER","intensity":800}`, string(data))

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"rest","intensity":300}`), &ev))
	assert.Equal(t, Event{Kind: EventRest, Intensity: 300}, ev)

	var s State
	require.NoError(t, json.Unmarshal([]byte(`"FREEZE"`), &s))
	assert.Equal(t, StateFreeze, s)
	assert.Error(t, json.Unmarshal([]byte(`"SOLID"`), &s))
}
