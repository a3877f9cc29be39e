package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
	"github.com/roach88/boundary/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(dir + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type failure struct {
	event Event
	err   error
}

// drain enqueues events, stops the engine and runs it to completion on the
// test goroutine.
func drain(t *testing.T, e *Engine, events ...Event) {
	t.Helper()
	for _, ev := range events {
		require.True(t, e.Enqueue(ev))
	}
	e.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
}

func demoEvents(token string) []Event {
	events := []Event{OpenEvent(token, sphere.DefaultConfig())}
	for _, in := range sphere.DemoScript() {
		events = append(events, IngestEvent(token, in))
	}
	return events
}

func TestEngine_New(t *testing.T) {
	e := New(setupTestStore(t), NewFixedGenerator("run-1"))

	assert.NotNil(t, e.clock)
	assert.NotNil(t, e.queue)
	assert.Equal(t, DefaultMaxSteps, e.MaxSteps())
	assert.Equal(t, 0, e.QueueLen())
}

func TestEngine_Options(t *testing.T) {
	clock := testutil.NewDeterministicClock()
	e := New(setupTestStore(t), NewFixedGenerator(), WithMaxSteps(5), WithClock(clock))

	assert.Equal(t, 5, e.MaxSteps())
	assert.Same(t, clock, e.Clock())
}

func TestEngine_Enqueue_AfterStop(t *testing.T) {
	e := New(setupTestStore(t), NewFixedGenerator())
	e.Stop()

	assert.False(t, e.Enqueue(OpenEvent("run-1", sphere.DefaultConfig())), "enqueue after stop should fail")
}

func TestEngine_DemoRun(t *testing.T) {
	s := setupTestStore(t)
	var observed []ir.Step
	e := New(s, NewFixedGenerator(), WithObserver(func(step ir.Step) {
		observed = append(observed, step)
	}))

	drain(t, e, demoEvents("run-1")...)

	ctx := context.Background()
	run, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, sphere.DefaultName, run.Name)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, ir.EngineVersion, run.EngineVersion)

	wantHash, err := ir.ConfigHash(sphere.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, wantHash, run.ConfigHash)

	steps, err := s.ReadSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, steps, len(sphere.DemoScript()))
	assert.Equal(t, steps, observed)

	want, err := sphere.Simulate(sphere.DefaultConfig(), sphere.DemoScript())
	require.NoError(t, err)
	for i, step := range steps {
		assert.Equal(t, i, step.Index)
		assert.Equal(t, int64(i+2), step.Seq, "seq follows the open")
		assert.Equal(t, want[i], step.Transition(), "step %d", i)
	}

	assert.NoError(t, Verify(run.Config, steps))
}

func TestEngine_Deterministic(t *testing.T) {
	collect := func() []ir.Step {
		s := setupTestStore(t)
		e := New(s, NewFixedGenerator(), WithClock(testutil.NewDeterministicClock()))
		drain(t, e, demoEvents("run-1")...)

		steps, err := s.ReadSteps(context.Background(), "run-1")
		require.NoError(t, err)
		return steps
	}

	assert.Equal(t, collect(), collect())
}

func TestEngine_UnknownRun(t *testing.T) {
	var failures []failure
	e := New(setupTestStore(t), NewFixedGenerator(), WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	}))

	drain(t, e, IngestEvent("missing", sphere.Event{Kind: sphere.EventInfo, Intensity: 10}))

	require.Len(t, failures, 1)
	assert.True(t, HasCode(failures[0].err, ErrCodeUnknownRun))
	assert.Equal(t, "missing", failures[0].event.RunToken)
}

func TestEngine_DuplicateRun(t *testing.T) {
	s := setupTestStore(t)
	var failures []failure
	handler := WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	})

	e := New(s, NewFixedGenerator(), handler)
	drain(t, e,
		OpenEvent("run-1", sphere.DefaultConfig()),
		OpenEvent("run-1", sphere.DefaultConfig()),
	)
	require.Len(t, failures, 1)
	assert.True(t, HasCode(failures[0].err, ErrCodeDuplicateRun))

	// A fresh engine on the same store still refuses the token.
	e2 := New(s, NewFixedGenerator(), handler)
	drain(t, e2, OpenEvent("run-1", sphere.DefaultConfig()))
	require.Len(t, failures, 2)
	assert.True(t, HasCode(failures[1].err, ErrCodeDuplicateRun))
}

func TestEngine_InvalidConfig(t *testing.T) {
	s := setupTestStore(t)
	var failures []failure
	e := New(s, NewFixedGenerator(), WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	}))

	cfg := sphere.DefaultConfig()
	cfg.Signals.Resolution = 0
	drain(t, e, OpenEvent("run-1", cfg))

	require.Len(t, failures, 1)
	assert.True(t, HasCode(failures[0].err, ErrCodeInvalidConfig))
	assert.ErrorIs(t, failures[0].err, sphere.ErrInvalidConfig)

	tokens, err := s.ListRunTokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestEngine_InvalidEventLeavesRunIntact(t *testing.T) {
	s := setupTestStore(t)
	var failures []failure
	e := New(s, NewFixedGenerator(), WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	}))

	drain(t, e,
		OpenEvent("run-1", sphere.DefaultConfig()),
		IngestEvent("run-1", sphere.Event{Kind: sphere.EventInfo, Intensity: 300}),
		IngestEvent("run-1", sphere.Event{Kind: sphere.EventInfo, Intensity: 5000}),
		IngestEvent("run-1", sphere.Event{Kind: sphere.EventInfo, Intensity: 300}),
	)

	require.Len(t, failures, 1)
	assert.True(t, HasCode(failures[0].err, ErrCodeInvalidEvent))
	assert.ErrorIs(t, failures[0].err, sphere.ErrInvalidEvent)

	var re *RuntimeError
	require.True(t, errors.As(failures[0].err, &re))
	assert.Equal(t, 1, re.Index)

	steps, err := s.ReadSteps(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[1].Index)
	assert.Equal(t, steps[0].After, steps[1].Before)
}

func TestEngine_QuotaExceeded(t *testing.T) {
	s := setupTestStore(t)
	var failures []failure
	e := New(s, NewFixedGenerator(), WithMaxSteps(3), WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	}))

	events := []Event{OpenEvent("run-1", sphere.DefaultConfig())}
	for i := 0; i < 5; i++ {
		events = append(events, IngestEvent("run-1", sphere.Event{Kind: sphere.EventRest, Intensity: 10}))
	}
	drain(t, e, events...)

	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.True(t, IsQuotaError(f.err))
		assert.True(t, IsStepsExceededError(f.err))
	}

	steps, err := s.ReadSteps(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, steps, 3)
}

func TestEngine_QuotaIsPerRun(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewFixedGenerator(), WithMaxSteps(2))

	drain(t, e,
		OpenEvent("run-a", sphere.DefaultConfig()),
		OpenEvent("run-b", sphere.DefaultConfig()),
		IngestEvent("run-a", sphere.Event{Kind: sphere.EventInfo, Intensity: 1}),
		IngestEvent("run-b", sphere.Event{Kind: sphere.EventInfo, Intensity: 1}),
		IngestEvent("run-a", sphere.Event{Kind: sphere.EventInfo, Intensity: 1}),
		IngestEvent("run-b", sphere.Event{Kind: sphere.EventInfo, Intensity: 1}),
	)

	ctx := context.Background()
	for _, token := range []string{"run-a", "run-b"} {
		steps, err := s.ReadSteps(ctx, token)
		require.NoError(t, err)
		assert.Len(t, steps, 2, token)
	}
}

func TestEngine_UnknownEventType(t *testing.T) {
	var failures []failure
	e := New(setupTestStore(t), NewFixedGenerator(), WithErrorHandler(func(ev Event, err error) {
		failures = append(failures, failure{ev, err})
	}))

	drain(t, e, Event{Type: EventType(42)})

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].err.Error(), "unknown event type")
}

func TestEngine_RunStopsOnContextCancel(t *testing.T) {
	e := New(setupTestStore(t), NewFixedGenerator())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.False(t, e.Enqueue(OpenEvent("run-1", sphere.DefaultConfig())), "queue closed after cancel")
}

func TestEngine_ConcurrentProducers(t *testing.T) {
	s := setupTestStore(t)
	e := New(s, NewFixedGenerator())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx)
	}()

	tokens := []string{"run-a", "run-b", "run-c"}
	producers := make(chan struct{}, len(tokens))
	for _, token := range tokens {
		go func(token string) {
			defer func() { producers <- struct{}{} }()
			for _, ev := range demoEvents(token) {
				e.Enqueue(ev)
			}
		}(token)
	}
	for range tokens {
		<-producers
	}
	e.Stop()
	require.NoError(t, <-done)

	for _, token := range tokens {
		steps, err := s.ReadSteps(ctx, token)
		require.NoError(t, err)
		require.Len(t, steps, len(sphere.DemoScript()), token)

		run, err := s.ReadRun(ctx, token)
		require.NoError(t, err)
		assert.NoError(t, Verify(run.Config, steps), token)
	}
}
