package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/sphere"
)

// IgnoreOptions holds flags for the ignore command.
type IgnoreOptions struct {
	*RootOptions
	Ground uint32
}

// IgnoreStep is the core matrix after one pressure was applied.
type IgnoreStep struct {
	Pressure  uint32            `json:"pressure"`
	Saturated bool              `json:"saturated"`
	Core      sphere.CoreMatrix `json:"core"`
}

// IgnoreResult holds every application, in order.
type IgnoreResult struct {
	Threshold uint32            `json:"threshold"`
	Steps     []IgnoreStep      `json:"steps"`
	Core      sphere.CoreMatrix `json:"core"`
}

// NewIgnoreCommand creates the ignore command.
func NewIgnoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IgnoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ignore PRESSURE...",
		Short: "Apply phase pressures to the core matrix",
		Long: `Apply phase pressures to the core matrix, in order.

A pressure at or below 13 is integrated into the ground stability.
A higher pressure is treated as phase disruption: the ignorance mask
saturates and the ground is left untouched. Ground stability wraps at
32 bits.

Examples:
  boundary ignore 5 8 14
  boundary ignore --ground 100 20 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIgnore(opts, cmd, args)
		},
	}

	cmd.Flags().Uint32Var(&opts.Ground, "ground", 0, "initial ground stability")

	return cmd
}

func runIgnore(opts *IgnoreOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)

	pressures := make([]uint32, 0, len(args))
	for _, arg := range args {
		p, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return f.Fail(ExitCommandError, "invalid pressure", err)
		}
		pressures = append(pressures, uint32(p))
	}

	core := sphere.CoreMatrix{GroundStability: opts.Ground}
	result := IgnoreResult{Threshold: sphere.Threshold13}
	for _, p := range pressures {
		saturated := core.ApplyStrategicIgnorance(p)
		result.Steps = append(result.Steps, IgnoreStep{Pressure: p, Saturated: saturated, Core: core})
	}
	result.Core = core

	if f.JSON() {
		return f.Success(result)
	}

	for _, s := range result.Steps {
		outcome := "integrated"
		if s.Saturated {
			outcome = "ignored"
		}
		fmt.Fprintf(f.Writer, "  pressure %d -> %s (ground %d, mask 0x%08X)\n",
			s.Pressure, outcome, s.Core.GroundStability, s.Core.IgnoranceMask)
	}
	fmt.Fprintf(f.Writer, "Ground: %d, mask 0x%08X\n", result.Core.GroundStability, result.Core.IgnoranceMask)
	return nil
}
