package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/sphere"
)

// RouteOptions holds flags for the route command.
type RouteOptions struct {
	*RootOptions
	NoFilter bool
}

// RoutedInput is one input and what the router did with it.
type RoutedInput struct {
	Phase      string  `json:"phase"`
	Input      string  `json:"input"`
	Routing    string  `json:"routing"`
	Efficiency float32 `json:"efficiency"`
}

// RouteResult holds the routing of every input, in order.
type RouteResult struct {
	FilterActive bool          `json:"filter_active"`
	Inputs       []RoutedInput `json:"inputs"`
	Efficiency   float32       `json:"efficiency"`
}

// demoRoutes is routed when no inputs are given.
var demoRoutes = []string{
	"GROUND_STABLE", "1+1=2",
	"PHASE_DISRUPTION", "what is essential truth?",
}

// NewRouteCommand creates the route command.
func NewRouteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RouteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "route [PHASE INPUT]...",
		Short: "Route inputs through the ignorance filter",
		Long: `Route inputs through the ignorance filter.

Arguments come in pairs: a phase (GROUND_STABLE or PHASE_DISRUPTION)
followed by the input routed under it. Stable-ground input is dropped
while the filter is on. Disrupted input runs inter-erosion and costs
efficiency. Without arguments a stable and a disrupted input are routed.

Examples:
  boundary route
  boundary route PHASE_DISRUPTION "why?" PHASE_DISRUPTION "why not?"
  boundary route --no-filter GROUND_STABLE "1+1=2" --format json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args)%2 != 0 {
				return fmt.Errorf("expected PHASE INPUT pairs, got %d argument(s)", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(opts, cmd, args)
		},
	}

	cmd.Flags().BoolVar(&opts.NoFilter, "no-filter", false, "turn the ignorance filter off")

	return cmd
}

func runRoute(opts *RouteOptions, cmd *cobra.Command, args []string) error {
	f := newFormatter(opts.RootOptions, cmd)

	if len(args) == 0 {
		args = demoRoutes
	}

	r := sphere.NewRouter()
	r.FilterActive = !opts.NoFilter

	result := RouteResult{FilterActive: r.FilterActive}
	for i := 0; i < len(args); i += 2 {
		phase, err := sphere.ParsePhase(args[i])
		if err != nil {
			return f.Fail(ExitCommandError, "invalid phase", err)
		}
		routing := r.Route(args[i+1], phase)
		f.VerboseLog("Routed %q under %s: %s", args[i+1], phase, routing)
		result.Inputs = append(result.Inputs, RoutedInput{
			Phase:      phase.String(),
			Input:      args[i+1],
			Routing:    routing.String(),
			Efficiency: r.Efficiency,
		})
	}
	result.Efficiency = r.Efficiency

	if f.JSON() {
		return f.Success(result)
	}

	filter := "off"
	if result.FilterActive {
		filter = "on"
	}
	fmt.Fprintf(f.Writer, "Ignorance filter %s\n", filter)
	for _, in := range result.Inputs {
		fmt.Fprintf(f.Writer, "  %-16s %q -> %s (efficiency %.2f)\n", in.Phase, in.Input, in.Routing, in.Efficiency)
	}
	fmt.Fprintf(f.Writer, "Efficiency: %.2f\n", result.Efficiency)
	return nil
}
