package rojo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"time"
)

// Runner runs the build tool with args inside dir, writing its combined
// output to out. A non-zero exit is reported through exitCode, not err.
type Runner interface {
	Run(ctx context.Context, dir string, args []string, out io.Writer) (exitCode int, err error)
}

var _ Runner = (*ProcessRunner)(nil)

// ProcessRunner runs the build tool as a local child process.
type ProcessRunner struct {
	Tool      string        // default: "rojo"
	WaitDelay time.Duration // default: 5s
}

func (r *ProcessRunner) tool() string {
	if r.Tool == "" {
		return "rojo"
	}
	return r.Tool
}

func (r *ProcessRunner) waitDelay() time.Duration {
	if r.WaitDelay == 0 {
		return 5 * time.Second
	}
	return r.WaitDelay
}

// Run implements Runner. The child is killed when ctx is done.
func (r *ProcessRunner) Run(ctx context.Context, dir string, args []string, out io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, r.tool(), args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	// Children that inherit the output pipes must not keep Wait blocked.
	cmd.WaitDelay = r.waitDelay()

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, ctxErr
	}
	if err != nil {
		if exitErr := (*exec.ExitError)(nil); errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return -1, fmt.Errorf("%w: %w", ErrToolNotFound, err)
		}
		return -1, err
	}

	return 0, nil
}
