package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/timebar/internal/output"
	"github.com/Dicklesworthstone/timebar/internal/status"
	"github.com/Dicklesworthstone/timebar/internal/timew"
	"github.com/Dicklesworthstone/timebar/internal/watcher"
)

func newStatusCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current task as a status line",
		Long: `Print today's current task, its total, and the day total as one line.

The default JSON form is {"class":"active|paused|idle|stopped","text":"..."},
ready for a Waybar custom module with "return-type": "json".

Examples:
  timebar status
  timebar status --format text
  timebar status --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and print a line whenever the status changes")
	return cmd
}

func runStatus(cmd *cobra.Command, watch bool) error {
	f, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	runner := newRunner(cfg)
	ctx := commandContext(cmd)

	if watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchStatus(ctx, f, runner)
	}

	st, err := fetchStatus(ctx, runner, cfg.StatusOptions())
	if err != nil {
		return err
	}
	return f.Status(st)
}

// fetchStatus exports today's intervals and projects them at a single instant.
func fetchStatus(ctx context.Context, runner timew.Runner, opts status.Options) (status.Status, error) {
	intervals, err := runner.Export(ctx)
	if err != nil {
		return status.Status{}, err
	}
	return status.Project(intervals, now(), opts)
}

func watchStatus(ctx context.Context, f *output.Formatter, runner timew.Runner) error {
	var changes <-chan struct{}
	if dir := watchDir(cfg.Timew.DataDir); dir != "" {
		w, err := watcher.New(dir, watcher.WithDebounce(cfg.Watch.Debounce()))
		if err != nil {
			slog.Warn("file watching disabled, polling only", "dir", dir, "error", err)
		} else {
			defer w.Close()
			changes = w.Changes()
		}
	}
	return watchLoop(ctx, f, runner, changes, cfg.Watch.Interval())
}

// watchLoop renders on start, on every tick and on every change signal,
// writing a line only when it differs from the previous one. Failed fetches
// are logged and skipped; configuration errors end the loop. It returns nil
// once ctx is cancelled.
func watchLoop(ctx context.Context, f *output.Formatter, runner timew.Runner, changes <-chan struct{}, interval time.Duration) error {
	opts := cfg.StatusOptions()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	render := func() error {
		st, err := fetchStatus(ctx, runner, opts)
		if err != nil {
			if errors.Is(err, status.ErrTagIndexOutOfRange) {
				return err
			}
			if ctx.Err() == nil {
				slog.Warn("status refresh failed", "error", err)
			}
			return nil
		}
		line, err := f.StatusLine(st)
		if err != nil {
			return err
		}
		if line == last {
			return nil
		}
		last = line
		_, err = fmt.Fprintln(f.Writer(), line)
		return err
	}

	if err := render(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-changes:
			slog.Debug("timewarrior data changed, refreshing")
		}
		if err := render(); err != nil {
			return err
		}
	}
}

// watchDir picks the directory timewarrior rewrites on every command: the
// data/ subdirectory when present, else the data dir itself.
func watchDir(dataDir string) string {
	if dataDir == "" {
		return ""
	}
	sub := filepath.Join(dataDir, "data")
	if info, err := os.Stat(sub); err == nil && info.IsDir() {
		return sub
	}
	return dataDir
}
