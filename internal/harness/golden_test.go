package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	for _, name := range []string{
		"demo_script",
		"contradiction_dissolve",
		"fixation_freeze",
		"rejected_events",
	} {
		t.Run(name, func(t *testing.T) {
			// To regenerate:
			//   go test ./internal/harness -run TestRunWithGolden_Scenarios -update
			result, err := RunWithGolden(t, loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_MarshalCanonical(t *testing.T) {
	result, err := Run(loadScenario(t, "fixation_freeze"))
	require.NoError(t, err)

	snapshot := TraceSnapshot{ScenarioName: "fixation_freeze", RunToken: result.RunToken, Trace: result.Trace}
	first, err := snapshot.MarshalCanonical()
	require.NoError(t, err)
	second, err := snapshot.MarshalCanonical()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `{"run_token":"test-run-freeze","scenario_name":"fixation_freeze","trace":[`)
	assert.NotContains(t, string(first), `"id"`)
}

func TestTraceSnapshot_EmptyTrace(t *testing.T) {
	snapshot := TraceSnapshot{ScenarioName: "empty", RunToken: "r"}
	data, err := snapshot.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"run_token":"r","scenario_name":"empty","trace":[]}`, string(data))
}
