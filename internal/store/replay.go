package store

import (
	"context"
	"fmt"

	"github.com/roach88/boundary/internal/ir"
)

// RunLog is a run together with its steps in ingest order.
type RunLog struct {
	Run   ir.Run
	Steps []ir.Step
}

// Final returns the last step, or false if the run has none.
func (l RunLog) Final() (ir.Step, bool) {
	if len(l.Steps) == 0 {
		return ir.Step{}, false
	}
	return l.Steps[len(l.Steps)-1], true
}

// ReplayRun reads everything needed to re-simulate a run: its opening
// config and its steps ordered by step_index.
//
// Returns an error wrapping sql.ErrNoRows if the run does not exist.
func (s *Store) ReplayRun(ctx context.Context, token string) (RunLog, error) {
	run, err := s.ReadRun(ctx, token)
	if err != nil {
		return RunLog{}, err
	}

	steps, err := s.ReadSteps(ctx, token)
	if err != nil {
		return RunLog{}, fmt.Errorf("replay run %s: %w", token, err)
	}

	return RunLog{Run: run, Steps: steps}, nil
}
