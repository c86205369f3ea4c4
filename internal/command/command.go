// Package command runs external tools (git, cloc) and captures their output.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result holds the captured output streams of a finished process.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner starts a process in dir and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, dir, name string, args ...string) (Result, error)

// Run calls f(ctx, dir, name, args...).
func (f RunnerFunc) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	return f(ctx, dir, name, args...)
}

// ExitError reports a process that exited with a non-zero status.
// The message is the process's error stream.
type ExitError struct {
	Name   string
	Args   []string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	}

	return msg
}

// ExecRunner runs processes with os/exec. Env entries are appended to the
// current environment.
type ExecRunner struct {
	Env []string
}

// Run implements Runner. The process is killed when ctx is done.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if runErr == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("run %s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return res, &ExitError{
			Name:   name,
			Args:   args,
			Code:   exitErr.ExitCode(),
			Stderr: stderr.String(),
		}
	}

	return res, fmt.Errorf("run %s: %w", name, runErr)
}
