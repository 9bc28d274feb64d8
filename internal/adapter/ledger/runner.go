package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrUnavailable is returned when the ledger cannot be reached: the command
// failed to start, exited non-zero, timed out, or no canister is configured.
var ErrUnavailable = errors.New("ledger unavailable")

// Runner executes one ledger CLI invocation and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the dfx binary as a child process.
type ExecRunner struct {
	path    string
	dir     string
	timeout time.Duration
}

// NewExecRunner creates a runner for the binary at path, executed in dir.
func NewExecRunner(path, dir string, timeout time.Duration) *ExecRunner {
	return &ExecRunner{path: path, dir: dir, timeout: timeout}
}

// Run executes the binary with args. Every failure wraps ErrUnavailable.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.path, args...)
	cmd.Dir = r.dir
	// Bound the wait for output pipes held open by grandchildren after a kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s timed out after %s", ErrUnavailable, r.path, r.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", ErrUnavailable, r.path, msg)
	}
	return stdout.String(), nil
}
