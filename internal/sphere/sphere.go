package sphere

import (
	"errors"
	"fmt"
)

// Signal bounds. Every signal is clamped after each change.
const (
	MinSignal     = 0
	MaxSignal     = 5000
	MinResolution = 1
	MaxResolution = 100
)

// Relief strengths applied when a boundary state is detected.
const (
	FloatRelief    = 240
	FreezeRelief   = 420
	DissolveRelief = 800

	// RebuildResolution is the resolution a dissolved sphere restarts at.
	RebuildResolution = 8
)

// ErrInvalidConfig is returned for configurations New refuses.
var ErrInvalidConfig = errors.New("invalid sphere config")

// Signals are the core signals of a sphere.
type Signals struct {
	Pressure      int32 `json:"pressure"`
	Contradiction int32 `json:"contradiction"`
	Meaning       int32 `json:"meaning"`
	Resolution    int32 `json:"resolution"`
	Fatigue       int32 `json:"fatigue"`
}

// Validate checks every signal against its clamp range.
func (s Signals) Validate() error {
	check := func(name string, v, lo, hi int32) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s %d outside [%d, %d]", ErrInvalidConfig, name, v, lo, hi)
		}
		return nil
	}
	return errors.Join(
		check("pressure", s.Pressure, MinSignal, MaxSignal),
		check("contradiction", s.Contradiction, MinSignal, MaxSignal),
		check("meaning", s.Meaning, MinSignal, MaxSignal),
		check("resolution", s.Resolution, MinResolution, MaxResolution),
		check("fatigue", s.Fatigue, MinSignal, MaxSignal),
	)
}

func (s *Signals) clamp() {
	s.Pressure = clamp(s.Pressure, MinSignal, MaxSignal)
	s.Contradiction = clamp(s.Contradiction, MinSignal, MaxSignal)
	s.Meaning = clamp(s.Meaning, MinSignal, MaxSignal)
	s.Resolution = clamp(s.Resolution, MinResolution, MaxResolution)
	s.Fatigue = clamp(s.Fatigue, MinSignal, MaxSignal)
}

// Thresholds are the tunable policy knobs of a sphere.
type Thresholds struct {
	Float    int32 `json:"float"`
	Freeze   int32 `json:"freeze"`
	Dissolve int32 `json:"dissolve"`
}

// Validate requires every threshold to be positive.
func (t Thresholds) Validate() error {
	if t.Float <= 0 || t.Freeze <= 0 || t.Dissolve <= 0 {
		return fmt.Errorf("%w: thresholds must be positive (float=%d freeze=%d dissolve=%d)",
			ErrInvalidConfig, t.Float, t.Freeze, t.Dissolve)
	}
	return nil
}

// Config describes a sphere before any event has been ingested.
type Config struct {
	Name       string     `json:"name"`
	Signals    Signals    `json:"signals"`
	Thresholds Thresholds `json:"thresholds"`
}

// Validate checks the name, signals and thresholds.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if err := c.Signals.Validate(); err != nil {
		return err
	}
	return c.Thresholds.Validate()
}

// Sphere is a running frame.
//
// A Sphere is not safe for concurrent use. The engine owns each sphere from
// its single event-loop goroutine.
type Sphere struct {
	Name       string
	Signals    Signals
	State      State
	Thresholds Thresholds
}

// Transition records one ingest: the signals before and after, the state that
// was detected before relief, the relief strength applied (0 when stable) and
// the state the sphere settled in.
type Transition struct {
	Event    Event   `json:"event"`
	Before   Signals `json:"before"`
	Detected State   `json:"detected"`
	Relief   int32   `json:"relief"`
	After    Signals `json:"after"`
	State    State   `json:"state"`
}

// New creates a STABLE sphere from cfg.
func New(cfg Config) (*Sphere, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sphere{
		Name:       cfg.Name,
		Signals:    cfg.Signals,
		State:      StateStable,
		Thresholds: cfg.Thresholds,
	}, nil
}

// Config returns the configuration that would recreate the sphere as it is now.
func (sp *Sphere) Config() Config {
	return Config{Name: sp.Name, Signals: sp.Signals, Thresholds: sp.Thresholds}
}

// Detect classifies signals against thresholds. The checks run in order
// DISSOLVE, FREEZE, FLOAT; the first that matches wins.
func Detect(sig Signals, th Thresholds) State {
	overload := sig.Pressure + sig.Fatigue
	fixation := sig.Meaning + sig.Resolution*10
	chaos := sig.Contradiction + sig.Pressure

	if chaos >= th.Dissolve {
		return StateDissolve
	}
	if fixation >= th.Freeze && sig.Pressure >= th.Freeze/2 {
		return StateFreeze
	}
	if overload >= th.Float && sig.Meaning >= th.Float/3 {
		return StateFloat
	}
	return StateStable
}

// ApplyIgnorance applies ignorance utility of the given strength (0..1000):
// a resolution downshift, venting of meaning and contradiction while pressure
// is above the dissolve threshold, and a re-center of pressure and fatigue.
// The result is clamped.
func ApplyIgnorance(sig *Signals, th Thresholds, strength int32) {
	if down := strength / 80; down > 0 {
		sig.Resolution -= down
	}

	if sig.Pressure > th.Dissolve {
		sig.Meaning -= strength / 8
		sig.Contradiction -= strength / 10
	}

	sig.Pressure -= strength / 6
	sig.Fatigue -= strength / 5

	sig.clamp()
}

// Ingest feeds one event to the sphere and returns the resulting transition.
// Invalid events leave the sphere untouched.
func (sp *Sphere) Ingest(ev Event) (Transition, error) {
	if err := ev.Validate(); err != nil {
		return Transition{}, err
	}

	tr := Transition{Event: ev, Before: sp.Signals}
	sig := &sp.Signals
	i := ev.Intensity

	switch ev.Kind {
	case EventInfo:
		sig.Pressure += i / 10
		sig.Fatigue += i / 15
		if i > 300 {
			sig.Resolution++
		}
	case EventContradiction:
		sig.Contradiction += i / 3
		sig.Pressure += i / 6
		sig.Fatigue += i / 8
	case EventMeaningOver:
		sig.Meaning += i / 2
		sig.Pressure += i / 5
		sig.Fatigue += i / 7
	case EventThreat:
		// threat forces meaning-making
		sig.Pressure += i / 2
		sig.Meaning += i / 6
		sig.Fatigue += i / 3
	case EventRest:
		ApplyIgnorance(sig, sp.Thresholds, i)
	}
	sig.clamp()

	tr.Detected = Detect(*sig, sp.Thresholds)
	switch tr.Detected {
	case StateFloat:
		tr.Relief = FloatRelief
		ApplyIgnorance(sig, sp.Thresholds, FloatRelief)
	case StateFreeze:
		tr.Relief = FreezeRelief
		ApplyIgnorance(sig, sp.Thresholds, FreezeRelief)
	case StateDissolve:
		tr.Relief = DissolveRelief
		ApplyIgnorance(sig, sp.Thresholds, DissolveRelief)
		sig.Resolution = RebuildResolution
		sig.Meaning /= 2
		sig.Contradiction /= 2
		sig.Pressure /= 2
		sig.Fatigue /= 2
	}

	sp.State = Detect(*sig, sp.Thresholds)
	tr.After = sp.Signals
	tr.State = sp.State
	return tr, nil
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
