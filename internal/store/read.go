package store

import (
	"context"
	"fmt"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadRun retrieves a run by token.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, token string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, name, config, config_hash, seq, engine_version, record_version
		FROM runs
		WHERE token = ?
	`, token)

	run, err := scanRun(row)
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", token, err)
	}
	return run, nil
}

// ReadSteps returns all steps of a run ordered by step_index ASC.
// Returns an empty slice (not nil) if the run has no steps.
func (s *Store) ReadSteps(ctx context.Context, token string) ([]ir.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_token, step_index, seq, kind, intensity, signals_before, detected, relief, signals_after, state
		FROM steps
		WHERE run_token = ?
		ORDER BY step_index ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []ir.Step{}
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}

	return steps, nil
}

// ListRunTokens returns every run token in the order runs were opened
// (seq ASC, token COLLATE BINARY ASC).
func (s *Store) ListRunTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token FROM runs
		ORDER BY seq ASC, token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list run tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan run token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run tokens: %w", err)
	}

	return tokens, nil
}

// CountStates returns how many steps of a run settled in each state.
// States that never occurred are absent from the map.
func (s *Store) CountStates(ctx context.Context, token string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state, COUNT(*) FROM steps
		WHERE run_token = ?
		GROUP BY state
	`, token)
	if err != nil {
		return nil, fmt.Errorf("count states: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("scan state count: %w", err)
		}
		counts[state] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state counts: %w", err)
	}

	return counts, nil
}

// MaxSeq returns the highest seq recorded by any run or step, or 0 for an
// empty store. The engine clock resumes from it.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM runs), 0),
			COALESCE((SELECT MAX(seq) FROM steps), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run        ir.Run
		configJSON string
	)
	if err := row.Scan(
		&run.Token,
		&run.Name,
		&configJSON,
		&run.ConfigHash,
		&run.Seq,
		&run.EngineVersion,
		&run.RecordVersion,
	); err != nil {
		return ir.Run{}, err
	}

	cfg, err := unmarshalConfig(configJSON)
	if err != nil {
		return ir.Run{}, err
	}
	run.Config = cfg
	return run, nil
}

func scanStep(row rowScanner) (ir.Step, error) {
	var (
		step                  ir.Step
		kind, detected, state string
		beforeJSON, afterJSON string
	)
	if err := row.Scan(
		&step.ID,
		&step.RunToken,
		&step.Index,
		&step.Seq,
		&kind,
		&step.Event.Intensity,
		&beforeJSON,
		&detected,
		&step.Relief,
		&afterJSON,
		&state,
	); err != nil {
		return ir.Step{}, fmt.Errorf("scan step: %w", err)
	}

	var err error
	if step.Event.Kind, err = sphere.ParseEventKind(kind); err != nil {
		return ir.Step{}, fmt.Errorf("step %s: %w", step.ID, err)
	}
	if step.Detected, err = sphere.ParseState(detected); err != nil {
		return ir.Step{}, fmt.Errorf("step %s: %w", step.ID, err)
	}
	if step.State, err = sphere.ParseState(state); err != nil {
		return ir.Step{}, fmt.Errorf("step %s: %w", step.ID, err)
	}
	if step.Before, err = unmarshalSignals(beforeJSON); err != nil {
		return ir.Step{}, fmt.Errorf("step %s: %w", step.ID, err)
	}
	if step.After, err = unmarshalSignals(afterJSON); err != nil {
		return ir.Step{}, fmt.Errorf("step %s: %w", step.ID, err)
	}
	return step, nil
}
