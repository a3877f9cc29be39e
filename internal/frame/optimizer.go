// Package frame routes answers toward attractors chosen by the caller's bias
// instead of toward a fixed truth. It manages coherence, not correctness.
package frame

// DefaultBoundary is the interface every optimizer starts with.
const DefaultBoundary = "spherical_interface"

var attractorBranches = []string{
	"Path_A: Efficiency",
	"Path_B: Coherence",
	"Path_C: Safety",
}

// Optimizer is the meta-frame optimizer.
type Optimizer struct {
	Boundary        string
	IgnoranceFilter bool
}

// NewOptimizer returns an optimizer on the spherical interface with the
// ignorance filter enabled.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		Boundary:        DefaultBoundary,
		IgnoranceFilter: true,
	}
}

// FindAttractorBranches returns the stable answer branches. The bias vector
// does not change the result; any value, including nil, yields the same
// three branches. Callers own the returned slice.
func (o *Optimizer) FindAttractorBranches(bias []float64) []string {
	out := make([]string, len(attractorBranches))
	copy(out, attractorBranches)
	return out
}
