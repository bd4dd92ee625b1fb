// Package rojo turns a prepared workspace into a binary model file by
// invoking the Rojo build tool.
package rojo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OutputFile is the default artifact name inside the workspace.
const OutputFile = "game-package.rbxm"

const maxLogSize = 1 << 20

var (
	ErrToolNotFound = errors.New("build tool not found")
	ErrTimeout      = errors.New("build timed out")
	ErrNoOutput     = errors.New("build produced no output")
)

// BuildError is returned when no attempt produced an artifact.
type BuildError struct {
	Attempts int
	ExitCode int // -1 when the tool didn't exit on its own
	Timeout  bool
	Log      []byte
	Err      error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build failed after %d attempt(s): %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("build failed after %d attempt(s): exit code is %d", e.Attempts, e.ExitCode)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Invoker runs builds with a bounded number of attempts.
type Invoker struct {
	Runner         Runner        // required
	MaxAttempts    int           // default: 2
	Timeout        time.Duration // default: 2m
	VersionTimeout time.Duration // default: 10s
	RetryWait      func(retry int) time.Duration
	Log            *slog.Logger
}

func (inv *Invoker) timeout() time.Duration {
	if inv.Timeout <= 0 {
		return 2 * time.Minute
	}
	return inv.Timeout
}

func (inv *Invoker) versionTimeout() time.Duration {
	if inv.VersionTimeout <= 0 {
		return 10 * time.Second
	}
	return inv.VersionTimeout
}

func (inv *Invoker) log() *slog.Logger {
	if inv.Log == nil {
		return slog.Default()
	}
	return inv.Log
}

// Version probes the tool with --version. It is meant for diagnostics only.
func (inv *Invoker) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, inv.versionTimeout())
	defer cancel()

	var out bytes.Buffer
	exitCode, err := inv.Runner.Run(ctx, "", []string{"--version"}, &cappedWriter{buf: &out, max: maxLogSize})
	if err != nil {
		return "", fmt.Errorf("rojo.Invoker: %w", err)
	}
	if exitCode != 0 {
		return "", fmt.Errorf("rojo.Invoker: version exit code is %d", exitCode)
	}
	return strings.TrimSpace(out.String()), nil
}

type BuildParams struct {
	Dir    string // required
	Output string // default: OutputFile

	// BeforeRetry runs before every retry, typically rewriting the manifest.
	BeforeRetry func() error
}

type Result struct {
	Data     []byte
	Attempts int
	Log      []byte
}

// Build runs "build --output <Output>" in Dir and reads the artifact.
// A non-zero exit is retried while attempts remain. A timeout, a missing
// tool or a failed BeforeRetry ends the build at once.
func (inv *Invoker) Build(ctx context.Context, params *BuildParams) (*Result, error) {
	output := params.Output
	if output == "" {
		output = OutputFile
	}
	args := []string{"build", "--output", output}

	var logBuf bytes.Buffer
	logWriter := &cappedWriter{buf: &logBuf, max: maxLogSize}
	var data []byte

	opts := &RetryOptions{
		MaxAttempts: inv.MaxAttempts,
		Timeout:     inv.timeout(),
		Wait:        inv.RetryWait,
		BeforeRetry: func(retry int) error {
			inv.log().Warn("retrying build", "dir", params.Dir, "retry", retry)
			if params.BeforeRetry == nil {
				return nil
			}
			return params.BeforeRetry()
		},
	}

	last, attempts := InvokeWithRetry(ctx, opts, func(ctx context.Context) Attempt {
		// Leftovers from a failed attempt must not pass as output.
		outputFile := filepath.Join(params.Dir, output)
		if err := os.Remove(outputFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Attempt{Outcome: OutcomeFatal, ExitCode: -1, Err: err}
		}

		_, _ = fmt.Fprintf(logWriter, "$ rojo %s\n", strings.Join(args, " "))
		exitCode, err := inv.Runner.Run(ctx, params.Dir, args, logWriter)
		if err != nil {
			return Attempt{Outcome: OutcomeFatal, ExitCode: -1, Err: err}
		}
		if exitCode != 0 {
			return Attempt{Outcome: OutcomeTransient, ExitCode: exitCode}
		}

		data, err = os.ReadFile(outputFile)
		if errors.Is(err, fs.ErrNotExist) {
			return Attempt{Outcome: OutcomeTransient, ExitCode: 0, Err: ErrNoOutput}
		} else if err != nil {
			return Attempt{Outcome: OutcomeFatal, ExitCode: 0, Err: err}
		}
		return Attempt{Outcome: OutcomeSucceeded}
	})

	if last.Outcome != OutcomeSucceeded {
		return nil, &BuildError{
			Attempts: attempts,
			ExitCode: last.ExitCode,
			Timeout:  last.Timeout,
			Log:      logBuf.Bytes(),
			Err:      last.Err,
		}
	}

	return &Result{Data: data, Attempts: attempts, Log: logBuf.Bytes()}, nil
}

// cappedWriter keeps the first max bytes and silently drops the rest.
type cappedWriter struct {
	buf *bytes.Buffer
	max int
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	if room := w.max - w.buf.Len(); room > 0 {
		w.buf.Write(p[:min(len(p), room)])
	}
	return len(p), nil
}
