// Package testutil holds deterministic stand-ins shared by tests and the
// scenario harness: a resettable logical clock and a fixed run token
// generator.
package testutil
