package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/engine"
	"github.com/roach88/boundary/internal/ir"
	"github.com/roach88/boundary/internal/sphere"
	"github.com/roach88/boundary/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunToken string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunToken      string `json:"run_token"`
	Sphere        string `json:"sphere"`
	Steps         int    `json:"steps"`
	Final         string `json:"final"`
	Deterministic bool   `json:"deterministic"`
	Divergence    string `json:"divergence,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate stored runs and verify determinism",
		Long: `Re-simulate stored runs from their recorded config and compare every
step with the one in the log.

A run is deterministic when its config hash, every step ID and every
recorded transition are reproduced exactly.

Exit codes:
  0 - All runs are deterministic
  1 - A run diverged from its re-simulation
  2 - Command error (database not found, unknown run, etc.)

Examples:
  boundary replay --db ./boundary.db
  boundary replay --db ./boundary.db --run demo-1
  boundary replay --db ./boundary.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	f := newFormatter(opts.RootOptions, cmd)

	if err := requireFile(opts.Database); err != nil {
		return f.Fail(ExitCommandError, "failed to open database", err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var tokens []string
	if opts.RunToken != "" {
		tokens = []string{opts.RunToken}
	} else {
		tokens, err = st.ListRunTokens(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list run tokens", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(tokens)),
		TotalRuns:        len(tokens),
		AllDeterministic: true,
	}

	for _, token := range tokens {
		f.VerboseLog("Replaying run %s", token)
		runResult, err := replayAndVerifyRun(ctx, st, token)
		if errors.Is(err, sql.ErrNoRows) {
			return f.Fail(ExitCommandError, "run not found",
				&LoadError{Code: ErrCodeUnknownRun, Message: fmt.Sprintf("no run %q in %s", token, opts.Database)})
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", token), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if f.JSON() {
		return outputReplayJSON(f, result)
	}
	return outputReplayText(f, result)
}

// replayAndVerifyRun reads a run and re-simulates it. A divergence is part
// of the result; only read failures and unusable configs are errors.
func replayAndVerifyRun(ctx context.Context, st *store.Store, token string) (ReplayRunResult, error) {
	runLog, err := st.ReplayRun(ctx, token)
	if err != nil {
		return ReplayRunResult{}, err
	}

	result := ReplayRunResult{
		RunToken:      token,
		Sphere:        runLog.Run.Name,
		Steps:         len(runLog.Steps),
		Final:         sphere.StateStable.String(),
		Deterministic: true,
	}
	if final, ok := runLog.Final(); ok {
		result.Final = final.State.String()
	}

	hash, err := ir.ConfigHash(runLog.Run.Config)
	if err != nil {
		return ReplayRunResult{}, err
	}
	if hash != runLog.Run.ConfigHash {
		result.Deterministic = false
		result.Divergence = fmt.Sprintf("config hash: replay %s, stored %s", hash, runLog.Run.ConfigHash)
		return result, nil
	}

	err = engine.Verify(runLog.Run.Config, runLog.Steps)
	var div *engine.DivergenceError
	switch {
	case errors.As(err, &div):
		result.Deterministic = false
		result.Divergence = div.Error()
	case err != nil:
		return ReplayRunResult{}, err
	}
	return result, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := f.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer
	pal := newPalette(w)

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		fmt.Fprintf(w, "%s Run: %s (%s)\n", pal.mark(run.Deterministic), run.RunToken, run.Sphere)
		fmt.Fprintf(w, "  Steps: %d, final %s\n", run.Steps, run.Final)
		if !run.Deterministic {
			fmt.Fprintf(w, "  Diverged: %s\n", run.Divergence)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintf(w, "%s All runs verified deterministic\n", pal.mark(true))
		return nil
	}

	fmt.Fprintf(w, "%s Determinism verification failed\n", pal.mark(false))
	return NewExitError(ExitFailure, "determinism verification failed")
}
