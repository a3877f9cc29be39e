// Package store provides SQLite-backed durable storage for boundary run logs.
//
// The store implements an append-only log with:
//   - Runs: how a sphere was opened (config, run token, logical clock)
//   - Steps: one record per ingested event, signals before and after
//
// # Ordering
//
// All ordering uses seq INTEGER (logical clock) or step_index, never
// timestamps. Steps of a run are always returned ORDER BY step_index ASC so
// a replay sees them in the order they were ingested.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING keyed on the run token and the
// content-addressed step ID, so re-writing the same record is a no-op.
// A different step claiming an existing (run_token, step_index) is an error.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Steps must reference an existing run
package store
