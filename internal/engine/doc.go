// Package engine runs boundary spheres behind a single-writer event loop.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every run (one sphere opened from a config) is owned by the goroutine that
// calls Engine.Run. Callers submit events with Enqueue from any goroutine;
// the loop dequeues them in FIFO order, mutates the sphere and appends the
// result to the store. This gives:
// - One ordering of ingests per engine, reproducible on replay
// - No locking around sphere state
// - Store writes from a single writer, matching SQLite's model
//
// Event Processing Flow:
// 1. EventTypeOpen creates a sphere from a sphere.Config and writes the run
// 2. EventTypeIngest feeds a sphere.Event to an open run
// 3. The transition is stamped with a seq from the clock and written as a step
// 4. Observers see each step after it has been written
//
// Processing errors are logged and handed to the error handler; the loop
// keeps going. A failed ingest leaves the sphere untouched.
//
// Logical Clock:
// Runs and steps are stamped with a monotonic seq from Clock.Next().
// Wall-clock time is never used for ordering.
package engine
