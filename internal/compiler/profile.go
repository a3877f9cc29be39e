package compiler

import (
	"fmt"
	"math"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/boundary/internal/sphere"
)

// Profile is a compiled sphere profile: the config a run opens with and an
// optional script of events to feed it.
type Profile struct {
	Config sphere.Config
	Script []sphere.Event
}

// CompileProfile parses a CUE value into a Profile.
// The value should be the profile struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`sphere: CORE: { signals: { pressure: 120 } }`)
//	p, err := CompileProfile(v.LookupPath(cue.ParsePath("sphere.CORE")))
//
// Missing signals and thresholds take their DefaultConfig values. Range
// checks are left to Validate so every problem can be reported at once.
func CompileProfile(v cue.Value) (*Profile, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if k := v.IncompleteKind(); k != cue.StructKind {
		return nil, &CompileError{
			Field:   "sphere",
			Message: fmt.Sprintf("profile must be a struct, got %v", k),
			Pos:     v.Pos(),
		}
	}

	if err := checkProfileFields(v); err != nil {
		return nil, err
	}

	def := sphere.DefaultConfig()
	p := &Profile{Config: def}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Config.Name = labels[len(labels)-1].String()
	}

	sig := &p.Config.Signals
	if err := parseInt32Fields(v, "signals", map[string]*int32{
		"pressure":      &sig.Pressure,
		"contradiction": &sig.Contradiction,
		"meaning":       &sig.Meaning,
		"resolution":    &sig.Resolution,
		"fatigue":       &sig.Fatigue,
	}); err != nil {
		return nil, err
	}

	th := &p.Config.Thresholds
	if err := parseInt32Fields(v, "thresholds", map[string]*int32{
		"float":    &th.Float,
		"freeze":   &th.Freeze,
		"dissolve": &th.Dissolve,
	}); err != nil {
		return nil, err
	}

	script, err := parseScript(v)
	if err != nil {
		return nil, err
	}
	p.Script = script

	return p, nil
}

// CompileAll compiles every profile under the top-level `sphere` field of
// root, in declaration order. A root without profiles yields an empty slice.
func CompileAll(root cue.Value) ([]*Profile, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spheres := root.LookupPath(cue.ParsePath("sphere"))
	if !spheres.Exists() {
		return []*Profile{}, nil
	}

	iter, err := spheres.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	profiles := []*Profile{}
	for iter.Next() {
		p, err := CompileProfile(iter.Value())
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Find returns the profile named name, or nil.
func Find(profiles []*Profile, name string) *Profile {
	for _, p := range profiles {
		if p.Config.Name == name {
			return p
		}
	}
	return nil
}

// profileFields are the labels a profile may declare.
var profileFields = map[string]bool{
	"signals":    true,
	"thresholds": true,
	"script":     true,
}

// checkProfileFields rejects labels a profile does not know, so a misspelled
// group is reported instead of leaving the defaults in place.
func checkProfileFields(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if name := iter.Label(); !profileFields[name] {
			return &CompileError{
				Field:   name,
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// parseInt32Fields fills targets from the optional struct field group.
// Unknown keys are rejected so a typo does not silently fall back to a
// default.
func parseInt32Fields(v cue.Value, group string, targets map[string]*int32) error {
	gv := v.LookupPath(cue.ParsePath(group))
	if !gv.Exists() {
		return nil
	}

	iter, err := gv.Fields()
	if err != nil {
		return &CompileError{Field: group, Message: "must be a struct", Pos: gv.Pos()}
	}

	for iter.Next() {
		name := iter.Label()
		path := group + "." + name
		target, ok := targets[name]
		if !ok {
			return &CompileError{
				Field:   path,
				Message: "unknown field",
				Pos:     iter.Value().Pos(),
			}
		}
		n, err := parseInt32(iter.Value(), path)
		if err != nil {
			return err
		}
		*target = n
	}
	return nil
}

// parseInt32 reads a concrete integer. Floats are forbidden: every signal
// computation uses integer arithmetic.
func parseInt32(v cue.Value, field string) (int32, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
	case cue.FloatKind, cue.NumberKind:
		return 0, &CompileError{
			Field:   field,
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expected int, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	n, err := v.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("%d does not fit in 32 bits", n),
			Pos:     v.Pos(),
		}
	}
	return int32(n), nil
}

// parseScript parses the optional script list of {kind, intensity} events.
func parseScript(v cue.Value) ([]sphere.Event, error) {
	sv := v.LookupPath(cue.ParsePath("script"))
	if !sv.Exists() {
		return nil, nil
	}

	list, err := sv.List()
	if err != nil {
		return nil, &CompileError{Field: "script", Message: "must be a list", Pos: sv.Pos()}
	}

	var events []sphere.Event
	for i := 0; list.Next(); i++ {
		ev := list.Value()
		field := fmt.Sprintf("script[%d]", i)

		kindVal := ev.LookupPath(cue.ParsePath("kind"))
		if !kindVal.Exists() {
			return nil, &CompileError{Field: field + ".kind", Message: "kind is required", Pos: ev.Pos()}
		}
		kindStr, err := kindVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		kind, err := sphere.ParseEventKind(kindStr)
		if err != nil {
			return nil, &CompileError{Field: field + ".kind", Message: err.Error(), Pos: kindVal.Pos()}
		}

		intensityVal := ev.LookupPath(cue.ParsePath("intensity"))
		if !intensityVal.Exists() {
			return nil, &CompileError{Field: field + ".intensity", Message: "intensity is required", Pos: ev.Pos()}
		}
		intensity, err := parseInt32(intensityVal, field+".intensity")
		if err != nil {
			return nil, err
		}

		events = append(events, sphere.Event{Kind: kind, Intensity: intensity})
	}
	return events, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
