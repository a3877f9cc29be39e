package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boundary/internal/compiler"
)

func TestValidate_ShippedProfiles(t *testing.T) {
	out, _, err := execute(t, "validate", "../../profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "3 profile(s) valid")

	out, _, err = execute(t, "--format", "json", "validate", "../../profiles")
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"GU_BOUNDARY_CORE", "FIXATED", "CONTRADICTED"}, result.Profiles)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "bad.cue", `package profiles

sphere: LOUD: {
	signals: {pressure: -5, contradiction: 0, meaning: 0, resolution: 50, fatigue: 0}
	script: [{kind: "THREAT", intensity: 5000}]
}

sphere: FINE: {
	signals: {pressure: 1, contradiction: 1, meaning: 1, resolution: 1, fatigue: 1}
}
`)

	out, _, err := execute(t, "--format", "json", "validate", dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"LOUD", "FINE"}, result.Profiles)

	var codes []string
	for _, issue := range result.Errors {
		assert.Equal(t, "LOUD", issue.Profile)
		codes = append(codes, issue.Code)
	}
	assert.Equal(t, []string{compiler.ErrSignalOutOfRange, compiler.ErrScriptIntensityRange}, codes)
}

func TestValidate_CompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name: "float signal",
			content: `package profiles
sphere: X: signals: {pressure: 1.5, contradiction: 0, meaning: 0, resolution: 10, fatigue: 0}
`,
			wantMsg: "float values are forbidden",
		},
		{
			name: "unknown signal",
			content: `package profiles
sphere: X: signals: {pressure: 1, contradiction: 0, meaning: 0, resolution: 10, fatigue: 0, hope: 3}
`,
			wantMsg: "unknown field",
		},
		{
			name: "misspelled profile field",
			content: `package profiles
sphere: X: {thresholdz: {float: 10}, scirpt: []}
`,
			wantMsg: "thresholdz: unknown field",
		},
		{
			name: "unknown event kind",
			content: `package profiles
sphere: X: script: [{kind: "PANIC", intensity: 10}]
`,
			wantMsg: "unknown event kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeProfile(t, dir, "x.cue", tt.content)

			out, _, err := execute(t, "validate", dir)

			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Validation failed")
			assert.Contains(t, out, ErrCodeCompileFailed)
			assert.Contains(t, out, tt.wantMsg)
		})
	}
}

func TestValidate_NoSphereField(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "other.cue", "package profiles\n\nfoo: 1\n")

	out, _, err := execute(t, "validate", dir)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no sphere profiles found")
}

func TestValidate_CommandErrors(t *testing.T) {
	empty := t.TempDir()

	tests := []struct {
		name     string
		dir      string
		wantCode string
	}{
		{"missing directory", filepath.Join(empty, "nope"), ErrCodeNotFound},
		{"no cue files", empty, ErrCodeNoFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "validate", tt.dir)

			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, tt.wantCode)
		})
	}
}

func TestValidate_RequiresDirectory(t *testing.T) {
	_, _, err := execute(t, "validate")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
