package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(map[string]int{"steps": 10}))

	var data map[string]int
	resp := decodeResponse(t, buf.String(), &data)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 10, data["steps"])
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("E008", "sphere not found", []string{"FIXATED"}))

	resp := decodeResponse(t, buf.String(), nil)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E008", resp.Error.Code)
	assert.Equal(t, "sphere not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose shows details", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, f.Error("E005", "database not found", map[string]string{"path": "x.db"}))

			assert.Contains(t, buf.String(), "Error [E005]: database not found")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("Replaying run %s", "demo-1")

	assert.Empty(t, out.String(), "JSON stream stays clean")
	assert.Equal(t, "Replaying run demo-1\n", errOut.String())

	f.Verbose = false
	f.VerboseLog("hidden")
	assert.NotContains(t, errOut.String(), "hidden")
}

func TestOutputFormatter_GetErrWriterFallsBack(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Writer: out}

	assert.Same(t, out, f.GetErrWriter())
}

func TestOutputFormatter_Fail(t *testing.T) {
	t.Run("load error keeps its code", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "json", Writer: buf}

		err := f.Fail(ExitCommandError, "failed to load sphere",
			&LoadError{Code: ErrCodeUnknownSphere, Message: "sphere \"X\" not found"})

		assert.Equal(t, ExitCommandError, GetExitCode(err))
		resp := decodeResponse(t, buf.String(), nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeUnknownSphere, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "failed to load sphere")
	})

	t.Run("other errors are generic", func(t *testing.T) {
		buf := &bytes.Buffer{}
		f := &OutputFormatter{Format: "text", Writer: buf}

		err := f.Fail(ExitFailure, "engine error", errors.New("disk full"))

		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, buf.String(), "Error [E001]: engine error: disk full")
	})
}

func TestExitError(t *testing.T) {
	base := errors.New("no such table")
	err := WrapExitError(ExitCommandError, "failed to read run", base)

	assert.Equal(t, "failed to read run: no such table", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "3 rejected", NewExitError(ExitFailure, "3 rejected").Error())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
}

func TestLoadError_Error(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "database not found: x.db"}
	assert.Equal(t, "E005: database not found: x.db", err.Error())
}
