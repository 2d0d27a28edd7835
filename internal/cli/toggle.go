package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/timebar/internal/status"
	"github.com/Dicklesworthstone/timebar/internal/timew"
)

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Stop the running task or resume the last one",
		Long: `Stop tracking if a task is running, otherwise continue the last task of today.

With no interval recorded today there is nothing to resume and the stopped
status line is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToggle(cmd)
		},
	}
}

func runToggle(cmd *cobra.Command) error {
	runner := newRunner(cfg)
	ctx := commandContext(cmd)

	intervals, err := runner.Export(ctx)
	if err != nil {
		return err
	}
	last := timew.Last(intervals)
	if last == nil {
		f, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		return f.Status(status.Stopped)
	}

	slog.Debug("toggling", "interval", last.ID, "open", last.IsOpen(), "tags", last.Tags)
	return timew.Toggle(ctx, runner, last)
}
