package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/roach88/boundary/internal/sphere"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainConfig = "boundary/config/v1"
	DomainStep   = "boundary/step/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConfigHash identifies a sphere configuration.
func ConfigHash(cfg sphere.Config) (string, error) {
	canonical, err := MarshalCanonical(ConfigObject(cfg))
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, canonical), nil
}

// StepID computes the content-addressed ID of a step.
// The ID depends only on what was fed to the run and when, never on the
// resulting signals, so a replay that diverges keeps the same IDs and the
// divergence shows up in the compared signals.
func StepID(runToken string, index int, ev sphere.Event, seq int64) (string, error) {
	obj := map[string]any{
		"run_token": runToken,
		"index":     index,
		"kind":      ev.Kind.String(),
		"intensity": ev.Intensity,
		"seq":       seq,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("StepID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainStep, canonical), nil
}
