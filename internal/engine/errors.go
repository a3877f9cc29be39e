package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an error detected while the engine processes an event.
// It carries the run token and, for ingests, the position the step would
// have taken.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunToken identifies the affected run.
	RunToken string

	// Index is the step index of a failed ingest, or -1.
	Index int

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownRun indicates an ingest for a run that was never opened.
	ErrCodeUnknownRun RuntimeErrorCode = "UNKNOWN_RUN"

	// ErrCodeDuplicateRun indicates an open for a token that is already in use.
	ErrCodeDuplicateRun RuntimeErrorCode = "DUPLICATE_RUN"

	// ErrCodeInvalidConfig indicates an open with a config the sphere refuses.
	ErrCodeInvalidConfig RuntimeErrorCode = "INVALID_CONFIG"

	// ErrCodeInvalidEvent indicates an ingest the sphere refuses.
	ErrCodeInvalidEvent RuntimeErrorCode = "INVALID_EVENT"

	// ErrCodeQuotaExceeded indicates the run reached its max steps.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.RunToken != "" {
		if e.Index >= 0 {
			msg += fmt.Sprintf(" (run=%s, index=%d)", e.RunToken, e.Index)
		} else {
			msg += fmt.Sprintf(" (run=%s)", e.RunToken)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is, or wraps, a RuntimeError with the given code.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Matches both RuntimeError with ErrCodeQuotaExceeded and StepsExceededError.
func IsQuotaError(err error) bool {
	if HasCode(err, ErrCodeQuotaExceeded) {
		return true
	}
	var se *StepsExceededError
	return errors.As(err, &se)
}

func newUnknownRunError(token string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeUnknownRun,
		Message:  "run was never opened",
		RunToken: token,
		Index:    -1,
	}
}

func newDuplicateRunError(token string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeDuplicateRun,
		Message:  "run token already in use",
		RunToken: token,
		Index:    -1,
	}
}

func newInvalidConfigError(token string, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeInvalidConfig,
		Message:  "sphere config rejected",
		RunToken: token,
		Index:    -1,
		Err:      err,
	}
}

func newInvalidEventError(token string, index int, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeInvalidEvent,
		Message:  "event rejected",
		RunToken: token,
		Index:    index,
		Err:      err,
	}
}

func newQuotaError(token string, index int, err error) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeQuotaExceeded,
		Message:  "run reached max steps",
		RunToken: token,
		Index:    index,
		Err:      err,
	}
}
