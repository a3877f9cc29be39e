package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/boundary/internal/compiler"
	"github.com/roach88/boundary/internal/sphere"
)

// LoadResult contains the profiles loaded from a directory.
type LoadResult struct {
	Profiles  []*compiler.Profile
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred while loading profiles.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeCompileFailed = "E007" // Profile compilation failed
	ErrCodeUnknownSphere = "E008" // --sphere names no loaded profile
	ErrCodeInvalidSphere = "E009" // Profile failed validation
	ErrCodeUnknownRun    = "E010" // Run token not in the database
)

// LoadProfiles loads and compiles every CUE profile in dir.
func LoadProfiles(dir string) (*LoadResult, error) {
	value, fileCount, err := loadCUEValue(dir)
	if err != nil {
		return nil, err
	}

	profiles, err := compiler.CompileAll(value)
	if err != nil {
		return nil, convertCompileError(err)
	}

	return &LoadResult{
		Profiles:  profiles,
		CUEValue:  value,
		FileCount: fileCount,
	}, nil
}

// loadCUEValue builds the CUE value of every file in dir without compiling
// profiles.
func loadCUEValue(dir string) (cue.Value, int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("profiles directory not found: %s", dir)}
	}
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing profiles directory: %v", err)}
	}
	if !info.IsDir() {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeCompileFailed, Message: err.Error()}
}

// resolveProfile picks the profile a command runs. Without a profiles
// directory it returns GU_BOUNDARY_CORE with the demo script. A profile that
// fails validation is refused.
func resolveProfile(dir, name string) (*compiler.Profile, error) {
	if name == "" {
		name = sphere.DefaultName
	}

	if dir == "" {
		if name != sphere.DefaultName {
			return nil, &LoadError{
				Code:    ErrCodeUnknownSphere,
				Message: fmt.Sprintf("sphere %q requires --profiles", name),
			}
		}
		return &compiler.Profile{Config: sphere.DefaultConfig(), Script: sphere.DemoScript()}, nil
	}

	result, err := LoadProfiles(dir)
	if err != nil {
		return nil, err
	}

	p := compiler.Find(result.Profiles, name)
	if p == nil {
		return nil, &LoadError{
			Code:    ErrCodeUnknownSphere,
			Message: fmt.Sprintf("sphere %q not found in %s", name, dir),
		}
	}

	if errs := compiler.Validate(p); len(errs) > 0 {
		return nil, &LoadError{
			Code:    ErrCodeInvalidSphere,
			Message: fmt.Sprintf("sphere %s: %v", name, errs[0]),
		}
	}
	return p, nil
}

// requireFile fails if path does not exist, so read-only commands never
// create an empty database.
func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", path)}
		}
		return err
	}
	return nil
}
