package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/boundary/internal/engine"
	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
)

// RejectedEvent is an event the engine refused. Position counts the events
// submitted to the run, starting at 0.
type RejectedEvent struct {
	Position  int    `json:"position"`
	Kind      string `json:"kind"`
	Intensity int32  `json:"intensity"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

// RunResult is the output of simulate and run.
type RunResult struct {
	RunToken    string          `json:"run_token"`
	Sphere      string          `json:"sphere"`
	Steps       []ir.Step       `json:"steps"`
	Rejected    []RejectedEvent `json:"rejected,omitempty"`
	InputErrors []InputError    `json:"input_errors,omitempty"`
	Final       string          `json:"final"`
}

// sessionConfig configures a session.
type sessionConfig struct {
	Database string // "" for an in-memory store
	RunToken string // "" for a fresh UUIDv7
	MaxSteps int    // 0 for the engine default
	OnStep   func(ir.Step)
	OnReject func(RejectedEvent)
}

// session drives a single run through an engine backed by a store. The
// engine clock resumes after the highest seq already in the store.
//
// Steps and Rejected are appended from the engine goroutine and may only be
// read after Drain or Serve returns.
type session struct {
	store *store.Store
	eng   *engine.Engine
	token string
	cfg   sessionConfig

	Steps    []ir.Step
	Rejected []RejectedEvent
	openErr  error
	position int
}

func newSession(ctx context.Context, cfg sessionConfig) (*session, error) {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	seq, err := st.MaxSeq(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read database", err)
	}

	var gen engine.RunTokenGenerator = engine.UUIDv7Generator{}
	if cfg.RunToken != "" {
		gen = engine.NewFixedGenerator(cfg.RunToken)
	}

	s := &session{store: st, cfg: cfg}
	opts := []engine.EngineOption{
		engine.WithClock(engine.NewClockAt(seq)),
		engine.WithObserver(s.observe),
		engine.WithErrorHandler(s.reject),
	}
	if cfg.MaxSteps > 0 {
		opts = append(opts, engine.WithMaxSteps(cfg.MaxSteps))
	}

	s.eng = engine.New(st, gen, opts...)
	s.token = s.eng.NewRun()
	return s, nil
}

// Open submits the open event for the session's run.
func (s *session) Open(cfg sphere.Config) {
	s.eng.Enqueue(engine.OpenEvent(s.token, cfg))
}

// Ingest submits one event. Returns false once the engine has stopped.
func (s *session) Ingest(ev sphere.Event) bool {
	return s.eng.Enqueue(engine.IngestEvent(s.token, ev))
}

// Drain stops the engine and processes every queued event.
func (s *session) Drain(ctx context.Context) error {
	s.eng.Stop()
	return s.Serve(ctx)
}

// Serve runs the engine until Stop is called or ctx is cancelled.
// Cancelling ctx stops intake like Stop does: events already queued are
// still written, under a context the cancellation does not reach.
func (s *session) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.eng.Stop)
	defer stop()

	return s.eng.Run(context.WithoutCancel(ctx))
}

// Stop closes the engine queue.
func (s *session) Stop() {
	s.eng.Stop()
}

// OpenErr returns why the run could not be opened, if it failed.
func (s *session) OpenErr() error {
	return s.openErr
}

// Close closes the store.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// Result summarizes the session for output.
func (s *session) Result(name string) RunResult {
	final := sphere.StateStable.String()
	if n := len(s.Steps); n > 0 {
		final = s.Steps[n-1].State.String()
	}
	steps := s.Steps
	if steps == nil {
		steps = []ir.Step{}
	}
	return RunResult{
		RunToken: s.token,
		Sphere:   name,
		Steps:    steps,
		Rejected: s.Rejected,
		Final:    final,
	}
}

func (s *session) observe(step ir.Step) {
	s.position++
	s.Steps = append(s.Steps, step)
	if s.cfg.OnStep != nil {
		s.cfg.OnStep(step)
	}
}

func (s *session) reject(ev engine.Event, err error) {
	if ev.Type == engine.EventTypeOpen {
		s.openErr = err
		return
	}

	code := ErrCodeGeneric
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		code = string(re.Code)
	}

	r := RejectedEvent{
		Position:  s.position,
		Kind:      ev.Input.Kind.String(),
		Intensity: ev.Input.Intensity,
		Code:      code,
		Error:     err.Error(),
	}
	s.position++
	s.Rejected = append(s.Rejected, r)
	if s.cfg.OnReject != nil {
		s.cfg.OnReject(r)
	}
}
