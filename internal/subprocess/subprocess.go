// Package subprocess runs external audio tools (ffmpeg, edge-tts) with
// context-aware timeouts and graceful shutdown.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command exceeds its timeout.
var ErrTimeout = errors.New("subprocess timed out")

// gracePeriod is how long a process gets after os.Interrupt before it is
// killed.
const gracePeriod = 100 * time.Millisecond

// maxStderr bounds how much stderr is quoted in errors.
const maxStderr = 2048

// Runner executes commands. The zero value is usable and has no timeout.
// A Runner is safe for concurrent use.
type Runner struct {
	// Timeout applies to each command when the context has no deadline.
	Timeout time.Duration
}

// Run executes name with args. stdin may be nil. It returns stdout.
func (r Runner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok && r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	// Stdin must be set before start; an empty reader keeps tools from
	// waiting on the terminal.
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	cmd.Stdin = stdin
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = gracePeriod

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", name, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", name, ctxErr)
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}

// LookPath reports whether binary is available and returns its location.
func LookPath(binary string) (string, error) {
	p, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", binary, err)
	}
	return p, nil
}
