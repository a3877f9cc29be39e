package harness

import "github.com/roach88/boundary/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// RunToken is the token the scenario's run was opened with.
	RunToken string `json:"run_token"`

	// Trace contains every stored step in index order.
	Trace []ir.Step `json:"trace"`

	// Rejected maps event positions to the engine error they produced.
	Rejected map[int]error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runToken string) *Result {
	return &Result{
		Pass:     true,
		RunToken: runToken,
		Trace:    []ir.Step{},
		Rejected: make(map[int]error),
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Final returns the last step of the trace, or false if it is empty.
func (r *Result) Final() (ir.Step, bool) {
	if len(r.Trace) == 0 {
		return ir.Step{}, false
	}
	return r.Trace[len(r.Trace)-1], true
}
