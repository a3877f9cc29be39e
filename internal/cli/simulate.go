package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Profiles string // optional - CUE profiles directory
	Sphere   string
	Database string // optional - in-memory when empty
	RunToken string // optional - UUIDv7 when empty
	MaxSteps int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a sphere's script through the engine",
		Long: `Open a run for a sphere and feed it the sphere's script.

Without --profiles the GU_BOUNDARY_CORE sphere runs the built-in demo
script. With --db the run is kept in a SQLite database for trace and
replay; otherwise it lives in memory.

Exit codes:
  0 - Every scripted event was accepted
  1 - One or more events were rejected
  2 - Command error (unknown sphere, database error, etc.)

Examples:
  boundary simulate
  boundary simulate --profiles ./profiles --sphere FIXATED
  boundary simulate --db ./boundary.db --run demo-1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Profiles, "profiles", "", "directory of CUE sphere profiles")
	cmd.Flags().StringVar(&opts.Sphere, "sphere", "GU_BOUNDARY_CORE", "sphere profile to simulate")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default in-memory)")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token (default a new UUIDv7)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "per-run step quota (default 1000)")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	p, err := resolveProfile(opts.Profiles, opts.Sphere)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to load sphere", err)
	}
	if len(p.Script) == 0 {
		return f.Fail(ExitCommandError, "nothing to simulate", fmt.Errorf("sphere %s has no script", p.Config.Name))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(ctx, sessionConfig{
		Database: opts.Database,
		RunToken: opts.RunToken,
		MaxSteps: opts.MaxSteps,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	f.VerboseLog("Simulating %s (%d events) as run %s", p.Config.Name, len(p.Script), s.token)

	s.Open(p.Config)
	for _, ev := range p.Script {
		s.Ingest(ev)
	}
	if err := s.Drain(ctx); err != nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if err := s.OpenErr(); err != nil {
		return f.Fail(ExitCommandError, "failed to open run", err)
	}

	result := s.Result(p.Config.Name)
	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result, RunToken: result.RunToken}
		if len(result.Rejected) > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    result.Rejected[0].Code,
				Message: fmt.Sprintf("%d event(s) rejected", len(result.Rejected)),
			}
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		writeRunText(f, newPalette(f.Writer), result)
	}

	if len(result.Rejected) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d event(s) rejected", len(result.Rejected)))
	}
	return nil
}

// writeRunText prints a finished run: its timeline, rejections and final state.
func writeRunText(f *OutputFormatter, pal *palette, result RunResult) {
	w := f.Writer

	fmt.Fprintf(w, "Run: %s (%s)\n", result.RunToken, result.Sphere)
	fmt.Fprintln(w)
	for _, step := range result.Steps {
		writeStep(w, pal, step, f.Verbose)
	}
	writeRejections(w, pal, result)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d step(s), %d rejected, final %s\n",
		len(result.Steps), len(result.Rejected)+len(result.InputErrors), result.Final)
}

func writeRejections(w interface{ Write([]byte) (int, error) }, pal *palette, result RunResult) {
	for _, r := range result.Rejected {
		fmt.Fprintf(w, "  %s event %d %s %d: %s\n", pal.mark(false), r.Position, r.Kind, r.Intensity, r.Code)
	}
	for _, ie := range result.InputErrors {
		fmt.Fprintf(w, "  %s line %d %q: %s\n", pal.mark(false), ie.Line, ie.Input, ie.Error)
	}
}
