package sphere

import "errors"

// EntropyFunc measures the disorder of an input vector.
type EntropyFunc func(input []int32) uint32

// PathFunc is the minimal path stable input takes to the logic core.
type PathFunc func(input []int32) []int32

// ErrGateUnconfigured is returned by Gate.Process when a collaborator is missing.
var ErrGateUnconfigured = errors.New("gate: entropy and minimal path must both be set")

// GateResult is the outcome of Gate.Process. Exactly one of Saturated or
// Output is meaningful.
type GateResult struct {
	Saturated  bool
	Saturation uint32
	Output     []int32
}

// Gate keeps disrupted input away from the logic core. The entropy measure
// and the minimal path are supplied by the caller; Gate only decides between
// them using Threshold13.
type Gate struct {
	Entropy EntropyFunc
	Minimal PathFunc
}

// Process redirects input whose entropy exceeds Threshold13 to the saturated
// ignorance state. Anything else takes the minimal path.
func (g *Gate) Process(input []int32) (GateResult, error) {
	if g.Entropy == nil || g.Minimal == nil {
		return GateResult{}, ErrGateUnconfigured
	}
	if g.Entropy(input) > Threshold13 {
		return GateResult{Saturated: true, Saturation: MaxConvergence}, nil
	}
	return GateResult{Output: g.Minimal(input)}, nil
}
