package sphere

import "fmt"

// DefaultName is the name of the reference sphere.
const DefaultName = "GU_BOUNDARY_CORE"

// DefaultThresholds are the thresholds of the reference sphere.
func DefaultThresholds() Thresholds {
	return Thresholds{Float: 900, Freeze: 1400, Dissolve: 2100}
}

// DefaultConfig returns the reference sphere configuration.
func DefaultConfig() Config {
	return Config{
		Name: DefaultName,
		Signals: Signals{
			Pressure:      120,
			Contradiction: 40,
			Meaning:       80,
			Resolution:    18,
			Fatigue:       50,
		},
		Thresholds: DefaultThresholds(),
	}
}

// DemoScript returns the reference event script. The two REST events are
// deliberate venting.
func DemoScript() []Event {
	return []Event{
		{EventInfo, 300},
		{EventMeaningOver, 600},
		{EventContradiction, 700},
		{EventThreat, 500},
		{EventInfo, 400},
		{EventContradiction, 900},
		{EventRest, 600},
		{EventMeaningOver, 800},
		{EventInfo, 200},
		{EventRest, 300},
	}
}

// Simulate runs events against a fresh sphere built from cfg and returns one
// transition per event. It stops at the first invalid event.
func Simulate(cfg Config, events []Event) ([]Transition, error) {
	sp, err := New(cfg)
	if err != nil {
		return nil, err
	}
	out := make([]Transition, 0, len(events))
	for i, ev := range events {
		tr, err := sp.Ingest(ev)
		if err != nil {
			return out, fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, tr)
	}
	return out, nil
}
