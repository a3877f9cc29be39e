package sphere

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// State is the boundary state of a sphere.
type State int

const (
	// StateStable means the frame works normally.
	StateStable State = iota
	// StateFloat means too many possibilities are open and the boundary blurs.
	StateFloat
	// StateFreeze means the frame is fixated on a single axis.
	StateFreeze
	// StateDissolve means the structure breaks down and waits for rebuild.
	StateDissolve
)

var stateNames = [...]string{
	StateStable:   "STABLE",
	StateFloat:    "FLOAT",
	StateFreeze:   "FREEZE",
	StateDissolve: "DISSOLVE",
}

// String returns the upper-case state name, or "UNKNOWN".
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// States lists every state in declaration order.
func States() []State {
	return []State{StateStable, StateFloat, StateFreeze, StateDissolve}
}

// ParseState converts a state name (case-insensitive) to a State.
func ParseState(name string) (State, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range stateNames {
		if n == upper {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown state %q", name)
}

// EventKind classifies an input event.
type EventKind int

const (
	// EventInfo is plain information to integrate.
	EventInfo EventKind = iota
	// EventContradiction is a contradicting input.
	EventContradiction
	// EventMeaningOver is an excess of meaning.
	EventMeaningOver
	// EventThreat is fear, crisis or any other threat.
	EventThreat
	// EventRest is deliberate rest: a direct vent and re-center.
	EventRest
)

var kindNames = [...]string{
	EventInfo:          "INFO",
	EventContradiction: "CONTRADICTION",
	EventMeaningOver:   "MEANING_OVER",
	EventThreat:        "THREAT",
	EventRest:          "REST",
}

// String returns the upper-case kind name, or "UNKNOWN".
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k EventKind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// MarshalText encodes the kind by name.
func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *EventKind) UnmarshalText(text []byte) error {
	v, err := ParseEventKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseEventKind converts a kind name (case-insensitive) to an EventKind.
func ParseEventKind(name string) (EventKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == upper {
			return EventKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", name)
}

// MaxIntensity is the upper bound of an event intensity.
const MaxIntensity = 1000

// ErrInvalidEvent is returned for events the simulator refuses to ingest.
var ErrInvalidEvent = errors.New("invalid event")

// Event is a single input to a sphere.
type Event struct {
	Kind      EventKind `json:"kind"`
	Intensity int32     `json:"intensity"`
}

// Validate checks the kind and that the intensity lies in [0, MaxIntensity].
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidEvent, int(e.Kind))
	}
	if e.Intensity < 0 || e.Intensity > MaxIntensity {
		return fmt.Errorf("%w: intensity %d outside [0, %d]", ErrInvalidEvent, e.Intensity, MaxIntensity)
	}
	return nil
}

// String renders the event as "KIND intensity".
func (e Event) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.Intensity)
}

// ParseEvent parses the "KIND INTENSITY" line format used by the CLI.
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Event{}, fmt.Errorf("%w: want \"KIND INTENSITY\", got %q", ErrInvalidEvent, line)
	}
	kind, err := ParseEventKind(fields[0])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	intensity, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return Event{}, fmt.Errorf("%w: intensity %q: %v", ErrInvalidEvent, fields[1], err)
	}
	ev := Event{Kind: kind, Intensity: int32(intensity)}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
