// Package timew wraps the timewarrior command line tool: it decodes the
// intervals exported for today and issues continue/stop commands.
package timew

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Common errors returned by the client
var (
	ErrBackendUnavailable = errors.New("timewarrior unavailable")
	ErrTimeout            = errors.New("timewarrior timed out")
	ErrMalformedData      = errors.New("malformed timewarrior data")
)

const (
	// DefaultBinary is the executable looked up on PATH.
	DefaultBinary = "timew"
	// DefaultTimeout bounds every backend call; the bar polls again on its own.
	DefaultTimeout = time.Second

	// Limit export output to 10MB to prevent OOM
	maxOutput = 10 * 1024 * 1024
)

// Runner is the subset of the client the CLI depends on.
type Runner interface {
	Export(ctx context.Context) ([]Interval, error)
	Continue(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Client runs timew subcommands with a bounded timeout.
type Client struct {
	binary  string
	timeout time.Duration
}

// NewClient creates a client for the given binary. Empty binary and
// non-positive timeout fall back to the defaults.
func NewClient(binary string, timeout time.Duration) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{binary: binary, timeout: timeout}
}

// Binary returns the configured executable name or path.
func (c *Client) Binary() string {
	return c.binary
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Detect checks if timew is installed and returns its path
func (c *Client) Detect() (string, bool) {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// Export returns today's intervals in chronological order.
func (c *Client) Export(ctx context.Context) ([]Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"export", ":today"}
	cmd := exec.CommandContext(ctx, c.binary, args...)
	// Wrappers that spawn timew without exec leave a grandchild holding the
	// pipes after the kill; WaitDelay closes them so Wait still returns.
	cmd.WaitDelay = c.timeout / 2

	stdout := &cappedBuffer{max: maxOutput}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %v", ErrBackendUnavailable, c.binary, err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %s %s failed: %v: %s",
			ErrBackendUnavailable, c.binary, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	if stdout.overflow {
		return nil, fmt.Errorf("%w: %s output exceeded limit of %d bytes", ErrMalformedData, c.binary, maxOutput)
	}
	slog.Debug("timew export finished", "bytes", stdout.buf.Len(), "elapsed", time.Since(start))

	return DecodeIntervals(stdout.buf.Bytes())
}

// cappedBuffer keeps at most max bytes and drops the rest, recording that
// it did so.
type cappedBuffer struct {
	buf      bytes.Buffer
	max      int
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); len(p) > room {
		b.overflow = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

// Continue resumes the most recently stopped interval.
func (c *Client) Continue(ctx context.Context) error {
	return c.run(ctx, "continue")
}

// Stop closes the open interval.
func (c *Client) Stop(ctx context.Context) error {
	return c.run(ctx, "stop")
}

// run executes a fire-and-forget subcommand. Its output is discarded; only
// the failure to launch, a non-zero exit or a timeout is reported.
func (c *Client) run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary, args...)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start %s: %v", ErrBackendUnavailable, c.binary, err)
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return fmt.Errorf("%w: %s %s failed: %v", ErrBackendUnavailable, c.binary, strings.Join(args, " "), err)
	}
	slog.Debug("timew command finished", "args", args)
	return nil
}

// Toggle resumes a stopped task or stops a running one, based on the latest
// interval. A nil interval is a no-op.
func Toggle(ctx context.Context, r Runner, last *Interval) error {
	if last == nil {
		return nil
	}
	if last.IsOpen() {
		return r.Stop(ctx)
	}
	return r.Continue(ctx)
}
