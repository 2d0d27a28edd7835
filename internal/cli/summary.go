package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/timebar/internal/output"
	"github.com/Dicklesworthstone/timebar/internal/status"
)

// summaryResult is the --json shape of `timebar summary`.
type summaryResult struct {
	Tasks     []status.TaskSummary `json:"tasks"`
	Intervals int                  `json:"intervals"`
	Total     string               `json:"total"`
}

func newSummaryCmd() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "List today's tasks with their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func runSummary(cmd *cobra.Command, jsonOut bool) error {
	intervals, err := newRunner(cfg).Export(commandContext(cmd))
	if err != nil {
		return err
	}

	opts := cfg.StatusOptions()
	instant := now()
	tasks, err := status.Summarize(status.GroupByTask(intervals), instant, opts)
	if err != nil {
		return err
	}
	total := status.FormatDuration(status.ComputeTotal(intervals, instant), false)

	w := cmd.OutOrStdout()
	f := output.New(w, output.FormatText, output.ColorRequested(noColor))
	if jsonOut {
		return f.JSON(summaryResult{Tasks: tasks, Intervals: len(intervals), Total: total})
	}

	if len(tasks) == 0 {
		f.Textln("No time tracked today.")
		return nil
	}

	f.Heading("Today")
	table := output.NewTable(w, "TASK", "TAGS", "INTERVALS", "TOTAL", "")
	for _, t := range tasks {
		running := ""
		if t.Open {
			running = "running"
		}
		table.AddRow(t.Tag, joinTags(t.Tags), strconv.Itoa(t.Intervals), t.TotalText, running)
	}
	table.Render()
	f.Textln("")
	f.Textln("Total: %s across %s", total, output.CountStr(len(intervals), "interval", "intervals"))
	return nil
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, " ")
}
