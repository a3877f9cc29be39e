package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Trace    []ir.Step // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, step := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s -> %s/%s\n", step.Index, step.Event, step.Detected, step.State)
	}

	return buf.String()
}

// assertFinalState checks the state the last step settled in.
func assertFinalState(trace []ir.Step, a Assertion) error {
	want, _ := sphere.ParseState(a.State)
	if len(trace) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: want.String(),
			Actual:   "empty trace",
			Trace:    trace,
		}
	}

	got := trace[len(trace)-1].State
	if got != want {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: want.String(),
			Actual:   got.String(),
			Trace:    trace,
		}
	}
	return nil
}

// assertStateCount checks how many steps settled in a state.
func assertStateCount(trace []ir.Step, a Assertion) error {
	want, _ := sphere.ParseState(a.State)
	count := 0
	for _, step := range trace {
		if step.State == want {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertStateCount,
			Expected: fmt.Sprintf("%s settled %d times", want, a.Count),
			Actual:   fmt.Sprintf("%s settled %d times", want, count),
			Trace:    trace,
		}
	}
	return nil
}

// assertStateOrder checks that the states appear in order among the settled
// states. Other states may appear in between.
func assertStateOrder(trace []ir.Step, a Assertion) error {
	next := 0
	for _, step := range trace {
		if next == len(a.States) {
			break
		}
		if sameState(a.States[next], step.State) {
			next++
		}
	}

	if next < len(a.States) {
		settled := make([]string, len(trace))
		for i, step := range trace {
			settled[i] = step.State.String()
		}
		return &AssertionError{
			Type:     AssertStateOrder,
			Expected: fmt.Sprintf("states in order: %v", a.States),
			Actual:   fmt.Sprintf("%v (stuck at %s)", settled, a.States[next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceContains checks that some step matches the event kind and any
// optional filters.
func assertTraceContains(trace []ir.Step, a Assertion) error {
	kind, _ := sphere.ParseEventKind(a.Kind)
	for _, step := range trace {
		if step.Event.Kind != kind {
			continue
		}
		if a.Intensity != nil && step.Event.Intensity != *a.Intensity {
			continue
		}
		if a.Detected != "" && !sameState(a.Detected, step.Detected) {
			continue
		}
		if a.State != "" && !sameState(a.State, step.State) {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeContains(a),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func describeContains(a Assertion) string {
	parts := []string{strings.ToUpper(a.Kind)}
	if a.Intensity != nil {
		parts = append(parts, fmt.Sprintf("intensity=%d", *a.Intensity))
	}
	if a.Detected != "" {
		parts = append(parts, "detected="+strings.ToUpper(a.Detected))
	}
	if a.State != "" {
		parts = append(parts, "state="+strings.ToUpper(a.State))
	}
	return "step " + strings.Join(parts, " ")
}

// EvaluateAssertions runs every assertion against the result's trace and
// returns the failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(result.Trace, a)
		case AssertStateCount:
			err = assertStateCount(result.Trace, a)
		case AssertStateOrder:
			err = assertStateOrder(result.Trace, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
