package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/Dicklesworthstone/timebar/internal/timew"
)

// Project derives the status record from today's intervals. The latest
// interval decides the state:
//
//	none          -> stopped
//	open          -> active
//	closed, idle  -> idle
//	closed        -> paused
//
// The text shows the current task's total next to the day total; the day
// total never shows seconds.
func Project(intervals []timew.Interval, now time.Time, opts Options) (Status, error) {
	last := timew.Last(intervals)
	if last == nil {
		return Stopped, nil
	}

	groups := GroupByTask(intervals)
	current, ok := FindGroup(groups, last.Tags)
	if !ok || len(current.Intervals) == 0 {
		return Stopped, nil
	}

	tag, err := SelectDisplayTag(last.Tags, opts.TagDelimiter, opts.FallbackTagIndex)
	if err != nil {
		return Status{}, err
	}

	taskTotal := FormatDuration(ComputeTotal(current.Intervals, now), opts.ShowSeconds)
	dayTotal := FormatDuration(ComputeTotal(intervals, now), false)

	st := Status{
		State: determineState(*last, now, opts),
		Text:  fmt.Sprintf("%s %s/%s", TruncateTag(tag, opts.MaxTagWidth), taskTotal, dayTotal),
	}

	if opts.Tooltip {
		summaries, err := Summarize(groups, now, opts)
		if err != nil {
			return Status{}, err
		}
		st.Tooltip = tooltip(summaries)
	}
	return st, nil
}

func determineState(last timew.Interval, now time.Time, opts Options) State {
	switch {
	case last.IsOpen():
		return StateActive
	case IsIdle(last, now, opts.IdleThresholdMinutes):
		return StateIdle
	default:
		return StatePaused
	}
}

func tooltip(summaries []TaskSummary) string {
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, s.Tag+" "+s.TotalText)
	}
	return strings.Join(lines, "\n")
}
