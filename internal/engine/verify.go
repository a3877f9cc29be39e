package engine

import (
	"fmt"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
)

// DivergenceError reports the first step at which a stored run and its
// re-simulation disagree.
type DivergenceError struct {
	Index int
	Field string
	Want  string // recomputed
	Got   string // stored
}

// Error implements the error interface.
func (d *DivergenceError) Error() string {
	return fmt.Sprintf("step %d diverged on %s: replay %s, stored %s", d.Index, d.Field, d.Want, d.Got)
}

// Verify re-simulates a stored run from cfg and checks every step against
// the recomputed transition. It returns nil if the run reproduces exactly,
// a *DivergenceError at the first mismatch, or another error if cfg itself
// is unusable.
func Verify(cfg sphere.Config, steps []ir.Step) error {
	sp, err := sphere.New(cfg)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	for i, step := range steps {
		if step.Index != i {
			return &DivergenceError{Index: i, Field: "index", Want: fmt.Sprint(i), Got: fmt.Sprint(step.Index)}
		}

		id, err := ir.StepID(step.RunToken, step.Index, step.Event, step.Seq)
		if err != nil {
			return fmt.Errorf("verify step %d: %w", i, err)
		}
		if id != step.ID {
			return &DivergenceError{Index: i, Field: "id", Want: id, Got: step.ID}
		}

		tr, err := sp.Ingest(step.Event)
		if err != nil {
			return &DivergenceError{Index: i, Field: "event", Want: err.Error(), Got: step.Event.String()}
		}

		if d := compareTransition(i, tr, step.Transition()); d != nil {
			return d
		}
	}
	return nil
}

func compareTransition(i int, want, got sphere.Transition) *DivergenceError {
	switch {
	case want.Before != got.Before:
		return &DivergenceError{Index: i, Field: "before", Want: fmt.Sprintf("%+v", want.Before), Got: fmt.Sprintf("%+v", got.Before)}
	case want.Detected != got.Detected:
		return &DivergenceError{Index: i, Field: "detected", Want: want.Detected.String(), Got: got.Detected.String()}
	case want.Relief != got.Relief:
		return &DivergenceError{Index: i, Field: "relief", Want: fmt.Sprint(want.Relief), Got: fmt.Sprint(got.Relief)}
	case want.After != got.After:
		return &DivergenceError{Index: i, Field: "after", Want: fmt.Sprintf("%+v", want.After), Got: fmt.Sprintf("%+v", got.After)}
	case want.State != got.State:
		return &DivergenceError{Index: i, Field: "state", Want: want.State.String(), Got: got.State.String()}
	}
	return nil
}
