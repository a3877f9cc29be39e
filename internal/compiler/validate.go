package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/boundary/internal/sphere"
)

// Validation error codes (E100-E199)
const (
	ErrProfileNameInvalid    = "E101" // name missing or not an identifier
	ErrSignalOutOfRange      = "E102" // signal outside its clamp range
	ErrThresholdNotPositive  = "E103" // threshold <= 0
	ErrScriptIntensityRange  = "E104" // script intensity outside [0, MaxIntensity]
	ErrScriptKindUnsupported = "E105" // script kind not a declared EventKind
)

// ValidationError represents a profile validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// profileNamePattern matches profile labels such as GU_BOUNDARY_CORE.
var profileNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate checks a compiled profile against the sphere's ranges.
// Returns all errors found (does not fail-fast).
func Validate(p *Profile) []ValidationError {
	var errs []ValidationError

	if !profileNamePattern.MatchString(p.Config.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid profile name %q, expected an identifier", p.Config.Name),
			Code:    ErrProfileNameInvalid,
		})
	}

	sig := p.Config.Signals
	for _, s := range []struct {
		name   string
		v      int32
		lo, hi int32
	}{
		{"pressure", sig.Pressure, sphere.MinSignal, sphere.MaxSignal},
		{"contradiction", sig.Contradiction, sphere.MinSignal, sphere.MaxSignal},
		{"meaning", sig.Meaning, sphere.MinSignal, sphere.MaxSignal},
		{"resolution", sig.Resolution, sphere.MinResolution, sphere.MaxResolution},
		{"fatigue", sig.Fatigue, sphere.MinSignal, sphere.MaxSignal},
	} {
		if s.v < s.lo || s.v > s.hi {
			errs = append(errs, ValidationError{
				Field:   "signals." + s.name,
				Message: fmt.Sprintf("%d outside [%d, %d]", s.v, s.lo, s.hi),
				Code:    ErrSignalOutOfRange,
			})
		}
	}

	th := p.Config.Thresholds
	for _, t := range []struct {
		name string
		v    int32
	}{
		{"float", th.Float},
		{"freeze", th.Freeze},
		{"dissolve", th.Dissolve},
	} {
		if t.v <= 0 {
			errs = append(errs, ValidationError{
				Field:   "thresholds." + t.name,
				Message: fmt.Sprintf("must be positive, got %d", t.v),
				Code:    ErrThresholdNotPositive,
			})
		}
	}

	for i, ev := range p.Script {
		if !ev.Kind.Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("script[%d].kind", i),
				Message: fmt.Sprintf("unsupported kind %d", int(ev.Kind)),
				Code:    ErrScriptKindUnsupported,
			})
		}
		if ev.Intensity < 0 || ev.Intensity > sphere.MaxIntensity {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("script[%d].intensity", i),
				Message: fmt.Sprintf("%d outside [0, %d]", ev.Intensity, sphere.MaxIntensity),
				Code:    ErrScriptIntensityRange,
			})
		}
	}

	return errs
}
