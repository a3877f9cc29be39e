// Package ir holds the records the engine writes and the store persists.
//
// Records are plain values: a Run describes how a sphere was opened and a
// Step describes one ingested event. Identity is content-addressed (see
// hash.go) so that replaying a run reproduces the same IDs.
//
// Key design constraints:
//   - NO float types in records or hashed payloads
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
