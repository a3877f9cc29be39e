package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/frame"
)

// BranchesOptions holds flags for the branches command.
type BranchesOptions struct {
	*RootOptions
	Bias []float64
}

// BranchesResult holds the optimizer's answer.
type BranchesResult struct {
	Boundary        string   `json:"boundary"`
	IgnoranceFilter bool     `json:"ignorance_filter"`
	Branches        []string `json:"branches"`
}

// NewBranchesCommand creates the branches command.
func NewBranchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BranchesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List the meta-frame attractor branches",
		Long: `List the attractor branches of the meta-frame optimizer.

The optimizer routes toward stable branches rather than a single truth.
A --bias vector may be given; the branches do not depend on it.

Examples:
  boundary branches
  boundary branches --bias 0.2,0.8 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranches(opts, cmd)
		},
	}

	cmd.Flags().Float64SliceVar(&opts.Bias, "bias", nil, "user bias vector")

	return cmd
}

func runBranches(opts *BranchesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	opt := frame.NewOptimizer()
	result := BranchesResult{
		Boundary:        opt.Boundary,
		IgnoranceFilter: opt.IgnoranceFilter,
		Branches:        opt.FindAttractorBranches(opts.Bias),
	}

	if f.JSON() {
		return f.Success(result)
	}

	filter := "off"
	if result.IgnoranceFilter {
		filter = "on"
	}
	fmt.Fprintf(f.Writer, "Boundary: %s (ignorance filter %s)\n", result.Boundary, filter)
	for _, b := range result.Branches {
		fmt.Fprintf(f.Writer, "  %s\n", b)
	}
	return nil
}
