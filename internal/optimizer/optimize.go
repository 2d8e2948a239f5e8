package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	osexec "os/exec"
	"path/filepath"
	"strings"
	"time"
)

// exitCommandNotFound is the shell convention for "command not found".
const exitCommandNotFound = 127

// Asset is a script handed to the optimizer. SourceRoot and SourcePath locate
// the file it was read from and determine its module name; both are empty for
// assets built from literal content.
type Asset struct {
	Content    []byte
	SourceRoot string
	SourcePath string
}

// Command returns the argv that runs r.js against profilePath.
func (f *Filter) Command(profilePath string) []string {
	var args []string
	if f.NodePath != "" {
		args = append(args, f.NodePath)
	}
	return append(args, f.RPath, "-o", profilePath)
}

// Optimize runs r.js over asset and returns the optimized content.
//
// The input script, the generated profile and the output are written to a
// scratch directory that is removed before Optimize returns, whatever the
// outcome. Failures are reported as ErrInterpreterNotFound, *ProcessError,
// ErrOutputNotCreated or ErrTimeout.
func (f *Filter) Optimize(ctx context.Context, asset Asset) ([]byte, error) {
	dir, err := os.MkdirTemp(f.TempDir, "rjs-build-")
	if err != nil {
		return nil, fmt.Errorf("cannot create build directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			f.Logger.Warn().Err(err).Str("dir", dir).Msg("cannot remove build directory")
		}
	}()

	input := filepath.Join(dir, "input")
	output := filepath.Join(dir, "output.js")
	profilePath := filepath.Join(dir, "build.js")

	if err := os.WriteFile(input+".js", asset.Content, 0o644); err != nil {
		return nil, fmt.Errorf("cannot write input file: %w", err)
	}

	var module string
	if asset.SourcePath != "" {
		if name, ok := f.ModuleName(asset.SourceRoot, asset.SourcePath); ok {
			module = name
		} else {
			f.Logger.Debug().Str("source", asset.SourcePath).Msg("source is outside the base URL and every path alias")
		}
	}

	profile := f.BuildProfile(input, output, module)
	data, err := profile.Encode()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(profilePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("cannot write build profile: %w", err)
	}

	args := f.Command(profilePath)
	f.Logger.Debug().
		Str("module", module).
		Str("name", profile.Name()).
		Strs("args", args).
		Msg("running optimizer")

	start := time.Now()
	result, err := f.Runner.Run(ctx, Command{Args: args, Timeout: f.Timeout})
	if err != nil {
		if errors.Is(err, osexec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", args[0], ErrInterpreterNotFound)
		}
		return nil, err
	}

	f.Logger.Debug().
		Int("exit_code", result.ExitCode).
		Dur("duration", time.Since(start)).
		Msg("optimizer finished")

	switch result.ExitCode {
	case 0:
	case exitCommandNotFound:
		return nil, ErrInterpreterNotFound
	default:
		detail := strings.TrimSpace(string(result.Stderr))
		if detail == "" {
			detail = strings.TrimSpace(string(result.Stdout))
		}
		return nil, &ProcessError{ExitCode: result.ExitCode, Output: detail, Input: asset.Content}
	}

	content, err := os.ReadFile(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrOutputNotCreated
		}
		return nil, fmt.Errorf("cannot read output file: %w", err)
	}
	return content, nil
}
