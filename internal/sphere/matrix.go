package sphere

// Threshold13 is the phase pressure above which input is treated as phase
// disruption and ignored rather than integrated.
const Threshold13 uint32 = 0x0000000D

// MaxConvergence is the saturated ignorance mask.
const MaxConvergence uint32 = 0xFFFFFFFF

// CoreMatrix is the ground state guarded by strategic ignorance.
type CoreMatrix struct {
	GroundStability uint32 `json:"ground_stability"`
	IgnoranceMask   uint32 `json:"ignorance_mask"`
}

// ApplyStrategicIgnorance integrates phasePressure into the ground state, or,
// when it exceeds Threshold13, saturates the ignorance mask and leaves the
// ground untouched. It reports whether the mask was saturated.
//
// GroundStability wraps on overflow.
func (m *CoreMatrix) ApplyStrategicIgnorance(phasePressure uint32) bool {
	if phasePressure > Threshold13 {
		m.IgnoranceMask = MaxConvergence
		return true
	}
	m.GroundStability += phasePressure
	return false
}
