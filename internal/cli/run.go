package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Profiles string
	Sphere   string
	RunToken string
	MaxSteps int
}

// InputError is a stdin line that is not a valid "KIND INTENSITY" event.
type InputError struct {
	Line  int    `json:"line"`
	Input string `json:"input"`
	Error string `json:"error"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a run and feed it events from stdin",
		Long: `Open a run for a sphere and ingest events read from stdin.

Each line holds one event as "KIND INTENSITY", e.g. "THREAT 500".
Blank lines and lines starting with # are skipped. Lines that do not
parse are reported and skipped. The run ends at EOF or on SIGINT/SIGTERM;
events already read are written before the command exits.

Example:
  boundary run --db ./boundary.db < events.txt
  boundary run --db ./boundary.db --profiles ./profiles --sphere FIXATED`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Profiles, "profiles", "", "directory of CUE sphere profiles")
	cmd.Flags().StringVar(&opts.Sphere, "sphere", "GU_BOUNDARY_CORE", "sphere profile to open")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token (default a new UUIDv7)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "per-run step quota (default 1000)")

	return cmd
}

func runEngine(opts *RunOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	p, err := resolveProfile(opts.Profiles, opts.Sphere)
	if err != nil {
		return f.Fail(ExitCommandError, "failed to load sphere", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := sessionConfig{
		Database: opts.Database,
		RunToken: opts.RunToken,
		MaxSteps: opts.MaxSteps,
	}
	if !f.JSON() {
		// Stream progress; both callbacks run inside Serve below.
		pal := newPalette(f.Writer)
		cfg.OnStep = func(step ir.Step) {
			writeStep(f.Writer, pal, step, f.Verbose)
		}
		cfg.OnReject = func(r RejectedEvent) {
			writeRejections(f.Writer, pal, RunResult{Rejected: []RejectedEvent{r}})
		}
	}

	s, err := newSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	s.Open(p.Config)
	if !f.JSON() {
		fmt.Fprintf(f.Writer, "Run: %s (%s)\n", s.token, p.Config.Name)
		fmt.Fprintln(f.Writer, "Reading events from stdin. Ctrl-D to finish.")
	}

	inputErrs := make(chan []InputError, 1)
	go func() {
		inputErrs <- feedEvents(cmd.InOrStdin(), s)
	}()

	if err := s.Serve(ctx); err != nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	// After a signal the reader may still be blocked on stdin.
	var parseErrs []InputError
	select {
	case parseErrs = <-inputErrs:
	case <-ctx.Done():
	}

	if err := s.OpenErr(); err != nil {
		return f.Fail(ExitCommandError, "failed to open run", err)
	}

	result := s.Result(p.Config.Name)
	result.InputErrors = parseErrs

	if f.JSON() {
		return f.Encode(CLIResponse{Status: "ok", Data: result, RunToken: result.RunToken})
	}

	pal := newPalette(f.Writer)
	writeRejections(f.Writer, pal, RunResult{InputErrors: parseErrs})
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "%d step(s), %d rejected, final %s\n",
		len(result.Steps), len(result.Rejected)+len(result.InputErrors), result.Final)
	return nil
}

// feedEvents reads "KIND INTENSITY" lines from r and submits them to the
// session, then stops the engine. Lines that do not parse are returned.
func feedEvents(r io.Reader, s *session) []InputError {
	defer s.Stop()

	var errs []InputError
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ev, err := sphere.ParseEvent(text)
		if err != nil {
			errs = append(errs, InputError{Line: line, Input: text, Error: err.Error()})
			continue
		}
		if !s.Ingest(ev) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, InputError{Line: line + 1, Error: err.Error()})
	}
	return errs
}
