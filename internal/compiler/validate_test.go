package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boundary/internal/sphere"
)

func TestValidateDefaultProfile(t *testing.T) {
	p := &Profile{Config: sphere.DefaultConfig(), Script: sphere.DemoScript()}
	assert.Empty(t, Validate(p))
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := sphere.DefaultConfig()
	cfg.Name = "bad name"
	cfg.Signals.Pressure = -1
	cfg.Signals.Resolution = 0
	cfg.Thresholds.Freeze = 0

	p := &Profile{
		Config: cfg,
		Script: []sphere.Event{
			{Kind: sphere.EventInfo, Intensity: 1001},
			{Kind: sphere.EventKind(7), Intensity: 5},
		},
	}

	errs := Validate(p)
	require.Len(t, errs, 6)

	codes := make(map[string]int)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		codes[e.Code]++
		fields = append(fields, e.Field)
	}

	assert.Equal(t, map[string]int{
		ErrProfileNameInvalid:    1,
		ErrSignalOutOfRange:      2,
		ErrThresholdNotPositive:  1,
		ErrScriptIntensityRange:  1,
		ErrScriptKindUnsupported: 1,
	}, codes)
	assert.Equal(t, []string{
		"name",
		"signals.pressure",
		"signals.resolution",
		"thresholds.freeze",
		"script[0].intensity",
		"script[1].kind",
	}, fields)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "signals.meaning", Message: "6000 outside [0, 5000]", Code: ErrSignalOutOfRange}
	assert.Equal(t, "[E102] signals.meaning: 6000 outside [0, 5000]", err.Error())
}
