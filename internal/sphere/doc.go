// Package sphere implements the boundary-of-spheres simulator.
//
// A sphere is a frame whose internal signals respond to a stream of events.
// Five signals are tracked:
//
//   - pressure: accumulated tension
//   - contradiction: unresolved contradictions
//   - meaning: strength of meaning-making (dangerous in excess)
//   - resolution: precision of the frame, 1..100
//   - fatigue: overload
//
// After every event the signals are clamped and the boundary state is
// detected. Entering FLOAT, FREEZE or DISSOLVE triggers ignorance utility
// (resolution downshift, venting, re-centering) so the sphere keeps operating.
// DISSOLVE additionally rebuilds the frame at low resolution with every other
// signal halved.
//
// All arithmetic is int32 with truncating division, so a script always yields
// the same sequence of transitions. The engine relies on this for replay.
//
// The package also carries the small strategic-ignorance primitives that sit
// next to the simulator: CoreMatrix (phase pressure against Threshold13),
// Router (ground/disruption routing) and Gate (entropy-gated stream
// processing with caller-supplied collaborators).
package sphere
