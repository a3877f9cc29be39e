package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
)

// marshalSignals converts signals to canonical JSON TEXT for storage.
func marshalSignals(sig sphere.Signals) (string, error) {
	data, err := ir.MarshalCanonical(ir.SignalsObject(sig))
	if err != nil {
		return "", fmt.Errorf("marshal signals: %w", err)
	}
	return string(data), nil
}

// marshalConfig converts a sphere config to canonical JSON TEXT for storage.
func marshalConfig(cfg sphere.Config) (string, error) {
	data, err := ir.MarshalCanonical(ir.ConfigObject(cfg))
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func unmarshalSignals(data string) (sphere.Signals, error) {
	var sig sphere.Signals
	if err := json.Unmarshal([]byte(data), &sig); err != nil {
		return sphere.Signals{}, fmt.Errorf("unmarshal signals: %w", err)
	}
	return sig, nil
}

func unmarshalConfig(data string) (sphere.Config, error) {
	var cfg sphere.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return sphere.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
