package command_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repogrowth/internal/command"
)

func TestExecRunner_CapturesOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	res, err := command.ExecRunner{}.Run(context.Background(), dir, "sh", "-c", "pwd; echo warn >&2")
	require.NoError(t, err)

	assert.Contains(t, string(res.Stdout), dir)
	assert.Equal(t, "warn\n", string(res.Stderr))
}

func TestExecRunner_ExitError(t *testing.T) {
	t.Parallel()

	_, err := command.ExecRunner{}.Run(context.Background(), t.TempDir(), "sh", "-c", "echo 'fatal: bad ref' >&2; exit 3")
	require.Error(t, err)

	var exitErr *command.ExitError
	require.ErrorAs(t, err, &exitErr)

	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh", exitErr.Name)
	assert.Equal(t, "fatal: bad ref", err.Error())
}

func TestExecRunner_ExitErrorWithoutStderr(t *testing.T) {
	t.Parallel()

	_, err := command.ExecRunner{}.Run(context.Background(), t.TempDir(), "sh", "-c", "exit 2")
	require.Error(t, err)

	assert.Equal(t, "sh exited with status 2", err.Error())
}

func TestExecRunner_Env(t *testing.T) {
	t.Parallel()

	runner := command.ExecRunner{Env: []string{"REPOGROWTH_TEST_VALUE=42"}}

	res, err := runner.Run(context.Background(), t.TempDir(), "sh", "-c", "printf %s \"$REPOGROWTH_TEST_VALUE\"")
	require.NoError(t, err)

	assert.Equal(t, "42", string(res.Stdout))
}

func TestExecRunner_ContextTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := command.ExecRunner{}.Run(ctx, t.TempDir(), "sleep", "5")
	require.Error(t, err)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExecRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	_, err := command.ExecRunner{}.Run(context.Background(), t.TempDir(), "repogrowth-no-such-binary")
	require.Error(t, err)

	var exitErr *command.ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestRunnerFunc(t *testing.T) {
	t.Parallel()

	var gotArgs []string

	runner := command.RunnerFunc(func(_ context.Context, dir, name string, args ...string) (command.Result, error) {
		gotArgs = append([]string{dir, name}, args...)

		return command.Result{Stdout: []byte("ok")}, nil
	})

	res, err := runner.Run(context.Background(), "/repo", "git", "status")
	require.NoError(t, err)

	assert.Equal(t, "ok", string(res.Stdout))
	assert.Equal(t, []string{"/repo", "git", "status"}, gotArgs)
}
