package harness

import (
	"context"
	"fmt"

	"github.com/roach88/boundary/internal/engine"
	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
	"github.com/roach88/boundary/internal/testutil"
)

// outcome is what the engine did with one scenario event: a step or an error.
type outcome struct {
	step *ir.Step
	err  error
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database through the real engine,
// with a deterministic clock and a fixed run token, so the same scenario
// always yields the same trace.
//
// Execution flow:
// 1. Create fresh in-memory database and engine
// 2. Enqueue the open and every event, then stop the engine
// 3. Drain the engine on the calling goroutine
// 4. Check expect clauses and assertions against the stored steps
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var (
		openErr  error
		outcomes []outcome
	)

	opts := []engine.EngineOption{
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithObserver(func(step ir.Step) {
			outcomes = append(outcomes, outcome{step: &step})
		}),
		engine.WithErrorHandler(func(ev engine.Event, err error) {
			if ev.Type == engine.EventTypeOpen {
				openErr = err
				return
			}
			outcomes = append(outcomes, outcome{err: err})
		}),
	}
	if scenario.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(scenario.MaxSteps))
	}

	eng := engine.New(st, testutil.NewFixedRunGenerator(scenario.RunToken), opts...)
	token := eng.NewRun()

	eng.Enqueue(engine.OpenEvent(token, scenario.Config()))
	for i, ev := range scenario.Events {
		kind, err := sphere.ParseEventKind(ev.Kind)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		eng.Enqueue(engine.IngestEvent(token, sphere.Event{Kind: kind, Intensity: ev.Intensity}))
	}
	eng.Stop()

	ctx := context.Background()
	if err := eng.Run(ctx); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if openErr != nil {
		return nil, fmt.Errorf("open run: %w", openErr)
	}

	result := NewResult(token)
	result.Trace, err = st.ReadSteps(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	for i, o := range outcomes {
		if o.err != nil {
			result.Rejected[i] = o.err
		}
		checkExpect(result, i, scenario.Events[i].Expect, o)
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// checkExpect validates one event's outcome against its expect clause.
// A rejection nobody expected always fails the scenario.
func checkExpect(result *Result, i int, expect *ExpectClause, o outcome) {
	if o.err != nil {
		if expect == nil || expect.Error == "" {
			result.AddError(fmt.Sprintf("events[%d]: unexpected rejection: %v", i, o.err))
			return
		}
		if !engine.HasCode(o.err, engine.RuntimeErrorCode(expect.Error)) {
			result.AddError(fmt.Sprintf("events[%d]: expected error %s, got %v", i, expect.Error, o.err))
		}
		return
	}

	if expect == nil {
		return
	}

	step := o.step
	if expect.Error != "" {
		result.AddError(fmt.Sprintf("events[%d]: expected error %s, got step %d", i, expect.Error, step.Index))
		return
	}
	if expect.State != "" && !sameState(expect.State, step.State) {
		result.AddError(fmt.Sprintf("events[%d]: expected state %s, got %s", i, expect.State, step.State))
	}
	if expect.Detected != "" && !sameState(expect.Detected, step.Detected) {
		result.AddError(fmt.Sprintf("events[%d]: expected detected %s, got %s", i, expect.Detected, step.Detected))
	}
}

func sameState(name string, s sphere.State) bool {
	want, err := sphere.ParseState(name)
	return err == nil && want == s
}
