package testutil

// DefaultRunToken is returned by a FixedRunGenerator created with "".
const DefaultRunToken = "test-run-default"

// FixedRunGenerator generates the same run token every time, so the same
// scenario always produces byte-identical run logs.
//
// Unlike engine.FixedGenerator, which returns tokens in sequence, this
// generator never runs out.
type FixedRunGenerator struct {
	token string
}

// NewFixedRunGenerator creates a fixed run token generator.
//
// The token is typically set in the scenario YAML:
//
//	run_token: "test-run-00000000-0000-0000-0000-000000000001"
func NewFixedRunGenerator(token string) *FixedRunGenerator {
	if token == "" {
		token = DefaultRunToken
	}
	return &FixedRunGenerator{token: token}
}

// Generate returns the fixed run token.
func (g *FixedRunGenerator) Generate() string {
	return g.token
}
