package sphere

import (
	"fmt"
	"strings"
)

// Phase is the system state an input is routed under.
type Phase int

const (
	// PhaseGroundStable is simple work on a stable ground.
	PhaseGroundStable Phase = iota
	// PhaseDisruption is meaning excess or smearing.
	PhaseDisruption
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseGroundStable:
		return "GROUND_STABLE"
	case PhaseDisruption:
		return "PHASE_DISRUPTION"
	default:
		return "UNKNOWN"
	}
}

// ParsePhase converts a phase name (case-insensitive) to a Phase.
func ParsePhase(name string) (Phase, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "GROUND_STABLE":
		return PhaseGroundStable, nil
	case "PHASE_DISRUPTION":
		return PhaseDisruption, nil
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// Routing is the outcome of Router.Route.
type Routing int

const (
	// RoutingPassed means the input went through untouched.
	RoutingPassed Routing = iota
	// RoutingIgnored means the ignorance filter dropped the input.
	RoutingIgnored
	// RoutingEroded means inter-erosion ran and cost efficiency.
	RoutingEroded
)

// String returns the routing name.
func (r Routing) String() string {
	switch r {
	case RoutingPassed:
		return "passed"
	case RoutingIgnored:
		return "ignored"
	case RoutingEroded:
		return "eroded"
	default:
		return "unknown"
	}
}

// ErosionCost is the efficiency spent by one erosion pass.
const ErosionCost float32 = 0.1

// Router drops inputs that need no computation and charges high-resolution
// erosion only when the phase is disrupted.
type Router struct {
	FilterActive bool
	Efficiency   float32
}

// NewRouter returns a router with the filter on and full efficiency.
func NewRouter() *Router {
	return &Router{FilterActive: true, Efficiency: 1.0}
}

// Route handles one input. The input content does not influence the routing;
// only the phase and the filter do.
func (r *Router) Route(input string, phase Phase) Routing {
	if phase == PhaseGroundStable && r.FilterActive {
		return RoutingIgnored
	}
	if phase == PhaseDisruption {
		r.Efficiency -= ErosionCost
		return RoutingEroded
	}
	return RoutingPassed
}
