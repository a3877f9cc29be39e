// Package compiler turns CUE sphere profiles into sphere configs.
//
// A profile file declares one or more spheres under the top-level `sphere`
// field:
//
//	sphere: GU_BOUNDARY_CORE: {
//		signals:    {pressure: 120, contradiction: 40, meaning: 80, resolution: 18, fatigue: 50}
//		thresholds: {float: 900, freeze: 1400, dissolve: 2100}
//		script: [{kind: "INFO", intensity: 300}]
//	}
//
// CompileProfile handles structure and types; Validate handles ranges.
package compiler
