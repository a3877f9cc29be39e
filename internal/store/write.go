package store

import (
	"context"
	"fmt"

	"github.com/roach88/boundary/internal/ir"
)

// WriteRun inserts a run record into the store.
// Uses ON CONFLICT(token) DO NOTHING for idempotency - rewriting a run is a no-op.
//
// The run's config is serialized to canonical JSON.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	configJSON, err := marshalConfig(run.Config)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(token, name, config, config_hash, seq, engine_version, record_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		run.Token,
		run.Name,
		configJSON,
		run.ConfigHash,
		run.Seq,
		run.EngineVersion,
		run.RecordVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

// WriteStep inserts a step record into the store.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// A different step for an existing (run_token, step_index) violates the UNIQUE
// constraint and returns an error.
//
// Note: The run referenced by RunToken must exist (foreign key constraint).
func (s *Store) WriteStep(ctx context.Context, step ir.Step) error {
	beforeJSON, err := marshalSignals(step.Before)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}
	afterJSON, err := marshalSignals(step.After)
	if err != nil {
		return fmt.Errorf("write step: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO steps
		(id, run_token, step_index, seq, kind, intensity, signals_before, detected, relief, signals_after, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		step.ID,
		step.RunToken,
		step.Index,
		step.Seq,
		step.Event.Kind.String(),
		step.Event.Intensity,
		beforeJSON,
		step.Detected.String(),
		step.Relief,
		afterJSON,
		step.State.String(),
	)
	if err != nil {
		return fmt.Errorf("write step %d of run %s: %w", step.Index, step.RunToken, err)
	}

	return nil
}
