package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/boundary/internal/engine"
	"github.com/roach88/boundary/internal/sphere"
)

// Scenario defines a boundary test scenario: a sphere profile, the events fed
// to it and assertions on the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunToken is an optional fixed run token. If empty, defaults to
	// testutil.DefaultRunToken.
	RunToken string `yaml:"run_token,omitempty"`

	// MaxSteps overrides the engine's per-run quota when positive.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Profile describes the sphere the run opens with. Omitted fields take
	// their sphere.DefaultConfig values.
	Profile *ProfileSpec `yaml:"profile,omitempty"`

	// Events are fed to the run in order.
	Events []EventStep `yaml:"events"`

	// Assertions validate the final trace.
	// Supported types: final_state, state_count, state_order, trace_contains
	Assertions []Assertion `yaml:"assertions"`
}

// ProfileSpec is an inline sphere profile.
type ProfileSpec struct {
	Name       string          `yaml:"name,omitempty"`
	Signals    *SignalsSpec    `yaml:"signals,omitempty"`
	Thresholds *ThresholdsSpec `yaml:"thresholds,omitempty"`
}

// SignalsSpec overrides individual initial signals.
type SignalsSpec struct {
	Pressure      *int32 `yaml:"pressure,omitempty"`
	Contradiction *int32 `yaml:"contradiction,omitempty"`
	Meaning       *int32 `yaml:"meaning,omitempty"`
	Resolution    *int32 `yaml:"resolution,omitempty"`
	Fatigue       *int32 `yaml:"fatigue,omitempty"`
}

// ThresholdsSpec overrides individual thresholds.
type ThresholdsSpec struct {
	Float    *int32 `yaml:"float,omitempty"`
	Freeze   *int32 `yaml:"freeze,omitempty"`
	Dissolve *int32 `yaml:"dissolve,omitempty"`
}

// EventStep is one event fed to the run.
type EventStep struct {
	// Kind is the event kind name (e.g. "INFO", "THREAT").
	Kind string `yaml:"kind"`

	// Intensity is the event intensity, 0..1000.
	Intensity int32 `yaml:"intensity"`

	// Expect optionally validates the resulting step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of one event.
type ExpectClause struct {
	// State is the expected settled state.
	State string `yaml:"state,omitempty"`

	// Detected is the expected state detected before relief.
	Detected string `yaml:"detected,omitempty"`

	// Error is the expected engine error code (e.g. "INVALID_EVENT").
	// The event must be rejected and produce no step.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": the last step settled in State
	// - "state_count": exactly Count steps settled in State
	// - "state_order": States appear in order among the settled states
	// - "trace_contains": some step matches Kind and the optional filters
	Type string `yaml:"type"`

	// State is used by final_state, state_count and as a filter by
	// trace_contains.
	State string `yaml:"state,omitempty"`

	// Count is used by state_count.
	Count int `yaml:"count,omitempty"`

	// States is used by state_order.
	States []string `yaml:"states,omitempty"`

	// Kind is used by trace_contains.
	Kind string `yaml:"kind,omitempty"`

	// Intensity optionally narrows trace_contains.
	Intensity *int32 `yaml:"intensity,omitempty"`

	// Detected optionally narrows trace_contains.
	Detected string `yaml:"detected,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState    = "final_state"
	AssertStateCount    = "state_count"
	AssertStateOrder    = "state_order"
	AssertTraceContains = "trace_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Config returns the sphere config the scenario's run opens with.
func (s *Scenario) Config() sphere.Config {
	cfg := sphere.DefaultConfig()
	p := s.Profile
	if p == nil {
		return cfg
	}

	if p.Name != "" {
		cfg.Name = p.Name
	}
	if sig := p.Signals; sig != nil {
		override(&cfg.Signals.Pressure, sig.Pressure)
		override(&cfg.Signals.Contradiction, sig.Contradiction)
		override(&cfg.Signals.Meaning, sig.Meaning)
		override(&cfg.Signals.Resolution, sig.Resolution)
		override(&cfg.Signals.Fatigue, sig.Fatigue)
	}
	if th := p.Thresholds; th != nil {
		override(&cfg.Thresholds.Float, th.Float)
		override(&cfg.Thresholds.Freeze, th.Freeze)
		override(&cfg.Thresholds.Dissolve, th.Dissolve)
	}
	return cfg
}

func override(dst *int32, v *int32) {
	if v != nil {
		*dst = *v
	}
}

// validateScenario checks that required fields are present and valid.
// Event intensities are not range-checked here: feeding the engine an
// out-of-range event is how a scenario exercises rejection.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("events list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if err := s.Config().Validate(); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	for i, ev := range s.Events {
		if _, err := sphere.ParseEventKind(ev.Kind); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
		if err := validateExpect(ev.Expect); err != nil {
			return fmt.Errorf("events[%d].expect: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

var errorCodes = map[string]bool{
	string(engine.ErrCodeInvalidEvent):  true,
	string(engine.ErrCodeQuotaExceeded): true,
}

func validateExpect(e *ExpectClause) error {
	if e == nil {
		return nil
	}
	if e.State == "" && e.Detected == "" && e.Error == "" {
		return fmt.Errorf("at least one of state, detected or error is required")
	}
	if e.Error != "" {
		if e.State != "" || e.Detected != "" {
			return fmt.Errorf("error cannot be combined with state or detected")
		}
		if !errorCodes[e.Error] {
			return fmt.Errorf("unsupported error code %q", e.Error)
		}
		return nil
	}
	if e.State != "" {
		if _, err := sphere.ParseState(e.State); err != nil {
			return err
		}
	}
	if e.Detected != "" {
		if _, err := sphere.ParseState(e.Detected); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	checkState := func(field, name string) error {
		if _, err := sphere.ParseState(name); err != nil {
			return fmt.Errorf("assertions[%d].%s: %w", index, field, err)
		}
		return nil
	}

	switch a.Type {
	case AssertFinalState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
		return checkState("state", a.State)
	case AssertStateCount:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for state_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for state_count", index)
		}
		return checkState("state", a.State)
	case AssertStateOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states list is required for state_order", index)
		}
		for _, st := range a.States {
			if err := checkState("states", st); err != nil {
				return err
			}
		}
	case AssertTraceContains:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_contains", index)
		}
		if _, err := sphere.ParseEventKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d].kind: %w", index, err)
		}
		if a.State != "" {
			if err := checkState("state", a.State); err != nil {
				return err
			}
		}
		if a.Detected != "" {
			if err := checkState("detected", a.Detected); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
