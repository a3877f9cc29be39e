package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunToken string
	State    string // optional - only steps that settled in this state
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	RunToken   string         `json:"run_token"`
	Sphere     string         `json:"sphere"`
	ConfigHash string         `json:"config_hash"`
	Config     sphere.Config  `json:"config"`
	Timeline   []ir.Step      `json:"timeline"`
	States     map[string]int `json:"states"`
	Final      string         `json:"final"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the timeline of a stored run",
		Long: `Show every step of a stored run in order, with the state detected
before relief and the state the sphere settled in, followed by how
many steps settled in each state.

Examples:
  boundary trace --db ./boundary.db --run demo-1
  boundary trace --db ./boundary.db --run demo-1 --state FLOAT
  boundary trace --db ./boundary.db --run demo-1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token to trace (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.State, "state", "", "only show steps that settled in this state")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	var filter *sphere.State
	if opts.State != "" {
		st, err := sphere.ParseState(opts.State)
		if err != nil {
			return f.Fail(ExitCommandError, "invalid --state", err)
		}
		filter = &st
	}

	if err := requireFile(opts.Database); err != nil {
		return f.Fail(ExitCommandError, "failed to open database", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runLog, err := st.ReplayRun(ctx, opts.RunToken)
	if errors.Is(err, sql.ErrNoRows) {
		return f.Fail(ExitCommandError, "run not found",
			&LoadError{Code: ErrCodeUnknownRun, Message: fmt.Sprintf("no run %q in %s", opts.RunToken, opts.Database)})
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	counts, err := st.CountStates(ctx, opts.RunToken)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count states", err)
	}

	result := TraceResult{
		RunToken:   runLog.Run.Token,
		Sphere:     runLog.Run.Name,
		ConfigHash: runLog.Run.ConfigHash,
		Config:     runLog.Run.Config,
		Timeline:   filterSteps(runLog.Steps, filter),
		States:     counts,
		Final:      sphere.StateStable.String(),
	}
	if final, ok := runLog.Final(); ok {
		result.Final = final.State.String()
	}

	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: result, RunToken: result.RunToken})
	}

	return outputTraceText(f, result)
}

// filterSteps keeps the steps that settled in state; nil keeps all.
func filterSteps(steps []ir.Step, state *sphere.State) []ir.Step {
	if state == nil {
		return steps
	}
	out := []ir.Step{}
	for _, step := range steps {
		if step.State == *state {
			out = append(out, step)
		}
	}
	return out
}

// outputTraceText outputs the trace result as text.
func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer
	pal := newPalette(w)

	fmt.Fprintf(w, "Trace for Run: %s\n", result.RunToken)
	fmt.Fprintf(w, "Sphere: %s\n", result.Sphere)
	if f.Verbose {
		fmt.Fprintf(w, "Config: %s\n", truncateID(result.ConfigHash))
		fmt.Fprintf(w, "Start:  %s\n", formatSignals(result.Config.Signals))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, pal.header.Render("=== Timeline ==="))
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, pal.muted.Render("  (no steps)"))
	}
	for _, step := range result.Timeline {
		writeStep(w, pal, step, f.Verbose)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, pal.header.Render("=== States ==="))
	for _, st := range sphere.States() {
		fmt.Fprintf(w, "  %s %d\n", pal.state(st), result.States[st.String()])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Final: %s\n", result.Final)
	return nil
}

// writeStep formats a single step as one timeline line.
func writeStep(w io.Writer, pal *palette, step ir.Step, verbose bool) {
	relief := ""
	if step.Relief > 0 {
		relief = pal.muted.Render(fmt.Sprintf("relief %d", step.Relief))
	}
	fmt.Fprintf(w, "  [%d] #%d %-13s %4d  %s -> %s %s\n",
		step.Seq, step.Index, step.Event.Kind, step.Event.Intensity,
		pal.state(step.Detected), pal.state(step.State), relief)

	if verbose {
		fmt.Fprintf(w, "       before: %s\n", formatSignals(step.Before))
		fmt.Fprintf(w, "       after:  %s\n", formatSignals(step.After))
		fmt.Fprintf(w, "       ID: %s\n", truncateID(step.ID))
	}
}

// formatSignals renders signals in a fixed order.
func formatSignals(s sphere.Signals) string {
	return fmt.Sprintf("pressure=%d contradiction=%d meaning=%d resolution=%d fatigue=%d",
		s.Pressure, s.Contradiction, s.Meaning, s.Resolution, s.Fatigue)
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
