package optimizer

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateModule is returned by AddModule for a name that is already
	// registered.
	ErrDuplicateModule = errors.New("duplicate optimizer module")

	// ErrInterpreterNotFound means the interpreter (or r.js itself when no
	// interpreter is configured) could not be executed: exit code 127 or a
	// missing executable.
	ErrInterpreterNotFound = errors.New("path to node executable could not be resolved")

	// ErrOutputNotCreated means r.js exited successfully without writing its
	// output file.
	ErrOutputNotCreated = errors.New("error creating output file")

	// ErrTimeout means r.js was killed after exceeding the configured timeout.
	ErrTimeout = errors.New("optimizer timed out")
)

// ProcessError reports an r.js run that exited with a failure code.
type ProcessError struct {
	ExitCode int
	Output   string // stderr, or stdout when stderr was empty
	Input    []byte // content of the asset being optimized
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("optimization failed (exit code %d)", e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}
