package cli

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"github.com/spf13/cobra"

	"github.com/roach88/boundary/internal/compiler"
)

// ValidationIssue is one problem found in a profile.
type ValidationIssue struct {
	Profile string `json:"profile,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Profiles []string          `json:"profiles"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <profiles-dir>",
		Short: "Validate CUE sphere profiles",
		Long: `Compile every sphere profile in a directory and check its signals,
thresholds and script against the simulator's ranges.

Every profile is checked; all problems are reported at once.

Exit codes:
  0 - All profiles valid
  1 - One or more profiles invalid
  2 - Command error (directory not found, CUE load failure, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	value, fileCount, err := loadCUEValue(dir)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = f.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		return f.Fail(ExitCommandError, "failed to load profiles", err)
	}

	f.VerboseLog("Found %d CUE file(s) in %s", fileCount, dir)

	result := validateAll(value, f)
	if len(result.Errors) > 0 {
		return outputValidationErrors(f, result)
	}
	return outputValidateSuccess(f, result)
}

// validateAll compiles and validates every profile under `sphere`.
func validateAll(value cue.Value, f *OutputFormatter) ValidationResult {
	result := ValidationResult{Profiles: []string{}}

	spheres := value.LookupPath(cue.ParsePath("sphere"))
	if !spheres.Exists() {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "sphere",
			Message: "no sphere profiles found",
			Code:    ErrCodeGeneric,
		})
		return result
	}

	iter, err := spheres.Fields()
	if err != nil {
		result.Errors = append(result.Errors, ValidationIssue{
			Field:   "sphere",
			Message: err.Error(),
			Code:    ErrCodeCompileFailed,
		})
		return result
	}

	for iter.Next() {
		name := iter.Label()
		f.VerboseLog("Validating sphere: %s", name)
		result.Profiles = append(result.Profiles, name)

		p, err := compiler.CompileProfile(iter.Value())
		if err != nil {
			issue := ValidationIssue{Profile: name, Field: name, Message: err.Error(), Code: ErrCodeCompileFailed}
			var cErr *compiler.CompileError
			if errors.As(err, &cErr) {
				issue.Field = cErr.Field
				issue.Message = cErr.Message
				if cErr.Pos.IsValid() {
					issue.Line = cErr.Pos.Line()
				}
			}
			result.Errors = append(result.Errors, issue)
			continue
		}

		for _, ve := range compiler.Validate(p) {
			result.Errors = append(result.Errors, ValidationIssue{
				Profile: name,
				Field:   ve.Field,
				Message: ve.Message,
				Code:    ve.Code,
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(f *OutputFormatter, result ValidationResult) error {
	if f.JSON() {
		return f.Success(result)
	}

	pal := newPalette(f.Writer)
	fmt.Fprintf(f.Writer, "%s %d profile(s) valid\n", pal.mark(true), len(result.Profiles))
	return nil
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if f.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := f.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	pal := newPalette(f.Writer)
	fmt.Fprintf(f.Writer, "%s Validation failed\n", pal.mark(false))
	fmt.Fprintln(f.Writer)

	for _, e := range errs {
		where := e.Field
		if e.Profile != "" && e.Profile != e.Field {
			where = e.Profile + "." + e.Field
		}
		if e.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", e.Code, where, e.Message)
	}

	return exitErr
}
