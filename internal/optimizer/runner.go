package optimizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"time"
)

// Command is one synchronous subprocess invocation.
type Command struct {
	Args    []string // Args[0] is the executable
	Dir     string
	Timeout time.Duration // zero disables the timeout
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a Command and blocks until it exits. A nonzero exit code is
// reported in the Result, not as an error; errors are reserved for processes
// that could not be started or were killed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// DefaultWaitDelay bounds how long Run waits for output pipes to close after
// the child has been killed.
const DefaultWaitDelay = time.Second

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// Env overrides the environment (nil = inherit from parent).
	Env []string

	// WaitDelay overrides DefaultWaitDelay.
	WaitDelay time.Duration
}

// Run starts cmd, waits for it and captures stdout and stderr separately. A
// child still running when the timeout expires is killed together with its
// process group and ErrTimeout is returned.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Args) == 0 {
		return nil, errors.New("empty command")
	}

	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := osexec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if r.Env != nil {
		c.Env = r.Env
	}
	// The child runs in its own process group and cancellation kills the
	// whole group, so descendants holding stdout or stderr die with it.
	killProcessGroup(c)
	c.WaitDelay = r.WaitDelay
	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultWaitDelay
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) && cmd.Timeout > 0 {
			return result, fmt.Errorf("%s after %s: %w", cmd.Args[0], cmd.Timeout, ErrTimeout)
		}
		return result, ctxErr
	}

	var exitErr *osexec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		return result, err
	}
}
