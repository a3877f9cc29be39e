// Package harness runs boundary scenarios against the engine.
//
// A scenario opens one run with an inline sphere profile, feeds it a list of
// events and checks the resulting trace with per-event expect clauses and
// trace-level assertions.
//
// # Scenario Format
//
//	name: fixation_freeze
//	description: "What this scenario validates"
//	run_token: test-run-freeze
//	max_steps: 10
//	profile:
//	  name: FIXATED
//	  signals: { pressure: 800, meaning: 700, resolution: 100 }
//	  thresholds: { freeze: 1400 }
//	events:
//	  - kind: INFO
//	    intensity: 100
//	    expect:
//	      detected: FREEZE
//	      state: FREEZE
//	  - kind: INFO
//	    intensity: 5000
//	    expect:
//	      error: INVALID_EVENT
//	assertions:
//	  - type: final_state
//	    state: STABLE
//
// Profile fields that are left out take their GU_BOUNDARY_CORE values.
//
// # Assertion Types
//
//   - final_state: the last step settled in the given state
//   - state_count: exactly count steps settled in the given state
//   - state_order: the states appear in order among the settled states
//   - trace_contains: some step matches kind and the optional intensity,
//     detected and state filters
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite store with a
// testutil.DeterministicClock and a fixed run token, so the same scenario
// always produces the same trace. RunWithGolden compares that trace against
// testdata/golden/<name>.golden.
package harness
