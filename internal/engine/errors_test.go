package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/boundary/internal/sphere"
)

func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *RuntimeError
		want string
	}{
		{
			name: "run only",
			err:  newUnknownRunError("run-1"),
			want: "UNKNOWN_RUN: run was never opened (run=run-1)",
		},
		{
			name: "with index and cause",
			err:  newInvalidEventError("run-1", 3, errors.New("boom")),
			want: "INVALID_EVENT: event rejected (run=run-1, index=3): boom",
		},
		{
			name: "no run",
			err:  &RuntimeError{Code: ErrCodeDuplicateRun, Message: "taken", Index: -1},
			want: "DUPLICATE_RUN: taken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestRuntimeError_Unwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", newInvalidConfigError("run-1", sphere.ErrInvalidConfig))

	assert.ErrorIs(t, err, sphere.ErrInvalidConfig)
	assert.True(t, HasCode(err, ErrCodeInvalidConfig))
	assert.False(t, HasCode(err, ErrCodeInvalidEvent))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeInvalidEvent))
}
