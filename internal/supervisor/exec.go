package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// ExecRunner runs a command with the supervisor's stdio. Canceling the
// context sends SIGTERM and kills the child after WaitDelay.
type ExecRunner struct {
	Path      string
	Args      []string
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Path, r.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d: %w", r.Path, exitErr.ExitCode(), err)
		}

		return fmt.Errorf("run %s: %w", r.Path, err)
	}

	return nil
}
