package ir

import "github.com/roach88/boundary/internal/sphere"

// Run records how a sphere was opened.
type Run struct {
	Token         string        `json:"token"`
	Name          string        `json:"name"`
	Config        sphere.Config `json:"config"`
	ConfigHash    string        `json:"config_hash"`
	Seq           int64         `json:"seq"` // logical clock at open
	EngineVersion string        `json:"engine_version"`
	RecordVersion string        `json:"record_version"`
}

// Step records one ingested event of a run.
type Step struct {
	ID       string         `json:"id"` // content-addressed, see StepID
	RunToken string         `json:"run_token"`
	Index    int            `json:"index"` // 0-based position within the run
	Seq      int64          `json:"seq"`   // logical clock
	Event    sphere.Event   `json:"event"`
	Before   sphere.Signals `json:"before"`
	Detected sphere.State   `json:"detected"`
	Relief   int32          `json:"relief"`
	After    sphere.Signals `json:"after"`
	State    sphere.State   `json:"state"`
}

// Transition returns the sphere transition recorded by the step.
func (s Step) Transition() sphere.Transition {
	return sphere.Transition{
		Event:    s.Event,
		Before:   s.Before,
		Detected: s.Detected,
		Relief:   s.Relief,
		After:    s.After,
		State:    s.State,
	}
}

// NewStep builds a step from a transition. The ID is left empty; callers
// compute it with StepID once seq is known.
func NewStep(runToken string, index int, seq int64, tr sphere.Transition) Step {
	return Step{
		RunToken: runToken,
		Index:    index,
		Seq:      seq,
		Event:    tr.Event,
		Before:   tr.Before,
		Detected: tr.Detected,
		Relief:   tr.Relief,
		After:    tr.After,
		State:    tr.State,
	}
}

// SignalsObject converts signals into a canonical JSON object.
func SignalsObject(s sphere.Signals) map[string]any {
	return map[string]any{
		"pressure":      s.Pressure,
		"contradiction": s.Contradiction,
		"meaning":       s.Meaning,
		"resolution":    s.Resolution,
		"fatigue":       s.Fatigue,
	}
}

// ThresholdsObject converts thresholds into a canonical JSON object.
func ThresholdsObject(t sphere.Thresholds) map[string]any {
	return map[string]any{
		"float":    t.Float,
		"freeze":   t.Freeze,
		"dissolve": t.Dissolve,
	}
}

// ConfigObject converts a sphere config into a canonical JSON object.
func ConfigObject(c sphere.Config) map[string]any {
	return map[string]any{
		"name":       c.Name,
		"signals":    SignalsObject(c.Signals),
		"thresholds": ThresholdsObject(c.Thresholds),
	}
}

// Object converts the step into a canonical JSON object. The ID is omitted
// so the object can feed golden traces independent of hashing changes.
func (s Step) Object() map[string]any {
	return map[string]any{
		"index":     s.Index,
		"seq":       s.Seq,
		"kind":      s.Event.Kind.String(),
		"intensity": s.Event.Intensity,
		"before":    SignalsObject(s.Before),
		"detected":  s.Detected.String(),
		"relief":    s.Relief,
		"after":     SignalsObject(s.After),
		"state":     s.State.String(),
	}
}
