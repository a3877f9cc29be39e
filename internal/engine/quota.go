package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer tracks the number of ingests per run and enforces a
// maximum steps limit. Each run has its own enforcer.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check reserves one step against the limit. A refused call reserves
// nothing, so the counter never passes the limit.
func (q *QuotaEnforcer) Check(runToken string) error {
	if q.current >= q.maxSteps {
		return &StepsExceededError{
			RunToken: runToken,
			Steps:    q.current + 1,
			Limit:    q.maxSteps,
		}
	}
	q.current++
	return nil
}

// Release gives back one step. Used when an ingest that passed Check is
// rejected before it produced a step.
func (q *QuotaEnforcer) Release() {
	if q.current > 0 {
		q.current--
	}
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a run exceeds the max steps quota.
type StepsExceededError struct {
	RunToken string
	Steps    int
	Limit    int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded max steps quota: %d steps > %d limit",
		e.RunToken, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
