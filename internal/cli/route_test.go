package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_DefaultInputs(t *testing.T) {
	out, _, err := execute(t, "route")
	require.NoError(t, err)

	assert.Contains(t, out, "Ignorance filter on")
	assert.Contains(t, out, `"1+1=2" -> ignored (efficiency 1.00)`)
	assert.Contains(t, out, `"what is essential truth?" -> eroded (efficiency 0.90)`)
	assert.Contains(t, out, "Efficiency: 0.90")
}

func TestRoute_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "route",
		"phase_disruption", "why?",
		"GROUND_STABLE", "1+1=2",
		"PHASE_DISRUPTION", "why not?")
	require.NoError(t, err)

	var result RouteResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.FilterActive)

	require.Len(t, result.Inputs, 3)
	assert.Equal(t, "PHASE_DISRUPTION", result.Inputs[0].Phase)
	assert.Equal(t, "eroded", result.Inputs[0].Routing)
	assert.Equal(t, "ignored", result.Inputs[1].Routing)
	assert.InDelta(t, 0.9, result.Inputs[1].Efficiency, 1e-6)
	assert.Equal(t, "why not?", result.Inputs[2].Input)
	assert.InDelta(t, 0.8, result.Efficiency, 1e-6)
}

func TestRoute_FilterOffPassesStableInput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "route", "--no-filter", "GROUND_STABLE", "1+1=2")
	require.NoError(t, err)

	var result RouteResult
	decodeResponse(t, out, &result)
	assert.False(t, result.FilterActive)
	require.Len(t, result.Inputs, 1)
	assert.Equal(t, "passed", result.Inputs[0].Routing)
	assert.Equal(t, float32(1.0), result.Efficiency)
}

func TestRoute_Errors(t *testing.T) {
	t.Run("odd argument count", func(t *testing.T) {
		_, _, err := execute(t, "route", "GROUND_STABLE")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PHASE INPUT pairs")
	})

	t.Run("unknown phase", func(t *testing.T) {
		out, _, err := execute(t, "route", "CALM", "1+1=2")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, `unknown phase "CALM"`)
	})
}
