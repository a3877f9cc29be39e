package harness

import (
	"fmt"

	"github.com/roach88/boundary/internal/compiler"
)

// ProfileReport summarizes running the scripts of compiled profiles.
type ProfileReport struct {
	TotalProfiles int               `json:"total_profiles"`
	Passed        int               `json:"passed"`
	Failed        int               `json:"failed"`
	Skipped       int               `json:"skipped"` // profiles without a script
	FinalStates   map[string]string `json:"final_states,omitempty"`
	Failures      []ProfileFailure  `json:"failures,omitempty"`
}

// ProfileFailure represents a profile whose script did not run cleanly.
type ProfileFailure struct {
	Profile string `json:"profile"`
	Error   string `json:"error"`
}

// ScenarioFromProfile builds a scenario that feeds the profile's script to a
// run opened with the profile's config. It has no assertions: it passes when
// every scripted event is accepted.
func ScenarioFromProfile(p *compiler.Profile) *Scenario {
	cfg := p.Config
	sig, th := cfg.Signals, cfg.Thresholds

	s := &Scenario{
		Name:        "profile_" + cfg.Name,
		Description: fmt.Sprintf("script of profile %s", cfg.Name),
		RunToken:    "profile-" + cfg.Name,
		Profile: &ProfileSpec{
			Name: cfg.Name,
			Signals: &SignalsSpec{
				Pressure:      &sig.Pressure,
				Contradiction: &sig.Contradiction,
				Meaning:       &sig.Meaning,
				Resolution:    &sig.Resolution,
				Fatigue:       &sig.Fatigue,
			},
			Thresholds: &ThresholdsSpec{
				Float:    &th.Float,
				Freeze:   &th.Freeze,
				Dissolve: &th.Dissolve,
			},
		},
	}
	for _, ev := range p.Script {
		s.Events = append(s.Events, EventStep{Kind: ev.Kind.String(), Intensity: ev.Intensity})
	}
	return s
}

// RunProfiles runs the script of every profile that has one.
func RunProfiles(profiles []*compiler.Profile) *ProfileReport {
	report := &ProfileReport{
		TotalProfiles: len(profiles),
		FinalStates:   make(map[string]string),
	}

	for _, p := range profiles {
		if len(p.Script) == 0 {
			report.Skipped++
			continue
		}

		name := p.Config.Name
		result, err := Run(ScenarioFromProfile(p))
		switch {
		case err != nil:
			report.Failed++
			report.Failures = append(report.Failures, ProfileFailure{Profile: name, Error: err.Error()})
		case !result.Pass:
			report.Failed++
			report.Failures = append(report.Failures, ProfileFailure{Profile: name, Error: result.Errors[0]})
		default:
			report.Passed++
			if final, ok := result.Final(); ok {
				report.FinalStates[name] = final.State.String()
			}
		}
	}
	return report
}
