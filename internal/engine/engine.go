package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
)

// DefaultMaxSteps is the default maximum number of steps per run.
const DefaultMaxSteps = 1000

// Engine is the single-writer event loop that owns every open sphere.
//
// Thread-safety model:
//   - Enqueue(), Stop(), NewRun(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Observers and the error handler are called from the Run goroutine
type Engine struct {
	store    *store.Store
	clock    Sequencer
	queue    *eventQueue
	tokenGen RunTokenGenerator

	maxSteps int
	runs     map[string]*openRun

	observer func(ir.Step)
	onError  func(Event, error)
}

// openRun is the in-memory state of a run. Only the Run goroutine touches it.
type openRun struct {
	sphere *sphere.Sphere
	quota  *QuotaEnforcer
	next   int // index of the next step
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxSteps sets the maximum steps quota per run.
// Default: 1000 steps (DefaultMaxSteps).
func WithMaxSteps(maxSteps int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithClock replaces the logical clock. Used to continue after the last seq
// of an existing store, and by tests that need fixed seq values.
func WithClock(c Sequencer) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithObserver registers fn to be called with every step after it has been
// written to the store.
func WithObserver(fn func(ir.Step)) EngineOption {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithErrorHandler registers fn to be called with every event that failed.
// Errors are logged whether or not a handler is set.
func WithErrorHandler(fn func(Event, error)) EngineOption {
	return func(e *Engine) {
		e.onError = fn
	}
}

// New creates an Engine writing to s and minting run tokens from tokenGen.
func New(s *store.Store, tokenGen RunTokenGenerator, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    s,
		clock:    NewClock(),
		queue:    newEventQueue(),
		tokenGen: tokenGen,
		maxSteps: DefaultMaxSteps,
		runs:     make(map[string]*openRun),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Enqueue submits an event for processing by the Run loop.
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// NewRun generates a new run token.
func (e *Engine) NewRun() string {
	return e.tokenGen.Generate()
}

// Run starts the single-writer event loop.
// Blocks until the context is cancelled or Stop() is called. After Stop,
// events already queued are processed before Run returns nil.
//
// On event processing failure, the error is logged with the event context
// and processing continues.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "max_steps", e.maxSteps)

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			if err := e.processEvent(ctx, event); err != nil {
				e.reportError(event, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel is closed once the queue is closed, so an
			// empty queue here means shutdown.
			if e.queue.Len() == 0 && e.queue.isClosed() {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the event queue, which causes Run to return once drained.
func (e *Engine) Stop() {
	e.queue.Close()
}

// QueueLen returns the number of events waiting to be processed.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// MaxSteps returns the configured per-run quota.
func (e *Engine) MaxSteps() int {
	return e.maxSteps
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() Sequencer {
	return e.clock
}

// processEvent routes an event to the appropriate handler.
// Called only from the Run goroutine.
func (e *Engine) processEvent(ctx context.Context, event Event) error {
	switch event.Type {
	case EventTypeOpen:
		return e.processOpen(ctx, event.RunToken, event.Config)
	case EventTypeIngest:
		return e.processIngest(ctx, event.RunToken, event.Input)
	default:
		return fmt.Errorf("unknown event type: %d", event.Type)
	}
}

// processOpen creates the sphere for a new run and records the run.
func (e *Engine) processOpen(ctx context.Context, token string, cfg sphere.Config) error {
	if _, ok := e.runs[token]; ok {
		return newDuplicateRunError(token)
	}
	if _, err := e.store.ReadRun(ctx, token); err == nil {
		return newDuplicateRunError(token)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("open run %s: %w", token, err)
	}

	sp, err := sphere.New(cfg)
	if err != nil {
		return newInvalidConfigError(token, err)
	}

	hash, err := ir.ConfigHash(cfg)
	if err != nil {
		return fmt.Errorf("open run %s: %w", token, err)
	}

	run := ir.Run{
		Token:         token,
		Name:          cfg.Name,
		Config:        cfg,
		ConfigHash:    hash,
		Seq:           e.clock.Next(),
		EngineVersion: ir.EngineVersion,
		RecordVersion: ir.RecordVersion,
	}
	if err := e.store.WriteRun(ctx, run); err != nil {
		return err
	}

	e.runs[token] = &openRun{
		sphere: sp,
		quota:  NewQuotaEnforcer(e.maxSteps),
	}

	slog.Info("run opened",
		"run_token", token,
		"name", cfg.Name,
		"config_hash", hash,
		"seq", run.Seq,
	)
	return nil
}

// processIngest feeds one event to an open run and writes the step.
// On any failure the sphere is left as it was before the event.
func (e *Engine) processIngest(ctx context.Context, token string, in sphere.Event) error {
	r, ok := e.runs[token]
	if !ok {
		return newUnknownRunError(token)
	}

	slog.Debug("processing ingest",
		"run_token", token,
		"index", r.next,
		"kind", in.Kind,
		"intensity", in.Intensity,
	)

	if err := in.Validate(); err != nil {
		return newInvalidEventError(token, r.next, err)
	}

	if err := r.quota.Check(token); err != nil {
		slog.Error("max steps quota exceeded",
			"run_token", token,
			"steps", r.quota.Current(),
			"max_steps", r.quota.MaxSteps(),
		)
		return newQuotaError(token, r.next, err)
	}

	saved := *r.sphere
	tr, err := r.sphere.Ingest(in)
	if err != nil {
		r.quota.Release()
		return newInvalidEventError(token, r.next, err)
	}

	seq := e.clock.Next()
	step := ir.NewStep(token, r.next, seq, tr)
	step.ID, err = ir.StepID(token, r.next, in, seq)
	if err == nil {
		err = e.store.WriteStep(ctx, step)
	}
	if err != nil {
		*r.sphere = saved
		r.quota.Release()
		return err
	}
	r.next++

	slog.Info("step written",
		"run_token", token,
		"index", step.Index,
		"seq", step.Seq,
		"detected", step.Detected,
		"state", step.State,
	)

	if e.observer != nil {
		e.observer(step)
	}
	return nil
}

func (e *Engine) reportError(event Event, err error) {
	logEventError(event, err)
	if e.onError != nil {
		e.onError(event, err)
	}
}

// logEventError logs an event processing error with enough context for
// manual recovery.
func logEventError(event Event, err error) {
	switch event.Type {
	case EventTypeOpen:
		slog.Error("open failed",
			"error", err,
			"run_token", event.RunToken,
			"name", event.Config.Name,
		)
	case EventTypeIngest:
		slog.Error("ingest failed",
			"error", err,
			"run_token", event.RunToken,
			"kind", event.Input.Kind,
			"intensity", event.Input.Intensity,
		)
	default:
		slog.Error("event processing failed",
			"error", err,
			"event_type", event.Type,
		)
	}
}
