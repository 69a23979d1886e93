//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/chromedriver-installer/internal/logger"
)

const (
	// DefaultCommandTimeout bounds every command started by CommandRunner.
	DefaultCommandTimeout = 10 * time.Second

	// waitDelay is how long Wait keeps reading output after the process was killed.
	waitDelay = time.Second
)

// ErrStderrNotEmpty is returned when a command reports anything on stderr.
var ErrStderrNotEmpty = errors.New("command wrote to stderr")

// Output is what a finished command wrote.
type Output struct {
	// Stdout is the captured standard output.
	Stdout string
	// Stderr is the captured standard error.
	Stderr string
}

// ExecError describes a failed command.
type ExecError struct {
	// Command is the command line that was executed.
	Command string
	// Stderr is the captured standard error, if any.
	Stderr string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("execute %q: %v", e.Command, e.Err)
	}

	return fmt.Sprintf("execute %q: %v: %s", e.Command, e.Err, stderr)
}

// Unwrap returns the underlying cause.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Runner starts external commands and captures their output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*Output, error)
}

// CommandRunner is the os/exec backed Runner.
type CommandRunner struct {
	// timeout limits a single command run.
	timeout time.Duration
	// ignoreStderr downgrades non-empty stderr from a failure to a warning.
	ignoreStderr bool
}

// RunnerOption configures a CommandRunner.
type RunnerOption func(*CommandRunner)

// WithTimeout sets the per-command timeout.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *CommandRunner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithIgnoreStderr makes non-empty stderr a warning instead of an error.
func WithIgnoreStderr(ignore bool) RunnerOption {
	return func(r *CommandRunner) {
		r.ignoreStderr = ignore
	}
}

// NewCommandRunner creates a CommandRunner that treats any stderr output as a failure.
func NewCommandRunner(opts ...RunnerOption) *CommandRunner {
	r := &CommandRunner{
		timeout: DefaultCommandTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the command and waits for it to finish.
// The output is returned even when the error is non-nil.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(cmdCtx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	commandLine := strings.Join(append([]string{name}, args...), " ")
	logger.DebugKV(ctx, "Executing command", "command", commandLine)

	err := cmd.Run()

	output := &Output{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		return output, &ExecError{
			Command: commandLine,
			Stderr:  output.Stderr,
			Err:     err,
		}
	}

	if output.Stderr == "" {
		return output, nil
	}

	if r.ignoreStderr {
		logger.WarnKV(ctx, "Command wrote to stderr", "command", commandLine, "stderr", output.Stderr)
		return output, nil
	}

	return output, &ExecError{
		Command: commandLine,
		Stderr:  output.Stderr,
		Err:     ErrStderrNotEmpty,
	}
}
