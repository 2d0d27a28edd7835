package status

import (
	"slices"
	"time"

	"github.com/Dicklesworthstone/timebar/internal/timew"
)

// TaskGroup is the set of intervals sharing one tag sequence. timew sorts
// tags on export, so element-wise equality identifies a task.
type TaskGroup struct {
	Tags      []string
	Intervals []timew.Interval
}

// GroupByTask partitions intervals by tag sequence. Groups are ordered by
// first appearance and keep their intervals in input order. Missing tags and
// an empty tag list are the same (untagged) task.
func GroupByTask(intervals []timew.Interval) []TaskGroup {
	var groups []TaskGroup
	for _, iv := range intervals {
		i := indexOfTags(groups, iv.Tags)
		if i < 0 {
			groups = append(groups, TaskGroup{Tags: iv.Tags})
			i = len(groups) - 1
		}
		groups[i].Intervals = append(groups[i].Intervals, iv)
	}
	return groups
}

// FindGroup returns the group whose tag sequence equals tags.
func FindGroup(groups []TaskGroup, tags []string) (TaskGroup, bool) {
	if i := indexOfTags(groups, tags); i >= 0 {
		return groups[i], true
	}
	return TaskGroup{}, false
}

func indexOfTags(groups []TaskGroup, tags []string) int {
	return slices.IndexFunc(groups, func(g TaskGroup) bool {
		return sameTags(g.Tags, tags)
	})
}

// sameTags compares tag sequences, treating nil and empty as equal.
func sameTags(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return slices.Equal(a, b)
}

// ComputeTotal sums the spans of intervals, measuring open ones up to now.
// Callers pass the same now for every total of a render.
func ComputeTotal(intervals []timew.Interval, now time.Time) time.Duration {
	var total time.Duration
	for _, iv := range intervals {
		total += iv.Span(now)
	}
	return total
}

// TaskSummary is the per-task line used by the tooltip and `timebar summary`.
type TaskSummary struct {
	Tag       string        `json:"tag"`
	Tags      []string      `json:"tags"`
	Intervals int           `json:"intervals"`
	Total     time.Duration `json:"-"`
	TotalText string        `json:"total"`
	Open      bool          `json:"open"`
}

// Summarize returns one summary per task group in first-appearance order.
func Summarize(groups []TaskGroup, now time.Time, opts Options) ([]TaskSummary, error) {
	summaries := make([]TaskSummary, 0, len(groups))
	for _, g := range groups {
		tag, err := SelectDisplayTag(g.Tags, opts.TagDelimiter, opts.FallbackTagIndex)
		if err != nil {
			return nil, err
		}
		total := ComputeTotal(g.Intervals, now)
		tags := g.Tags
		if tags == nil {
			tags = []string{}
		}
		summaries = append(summaries, TaskSummary{
			Tag:       TruncateTag(tag, opts.MaxTagWidth),
			Tags:      tags,
			Intervals: len(g.Intervals),
			Total:     total,
			TotalText: FormatDuration(total, opts.ShowSeconds),
			Open:      slices.ContainsFunc(g.Intervals, timew.Interval.IsOpen),
		})
	}
	return summaries, nil
}
