// Package status derives the status bar record from today's timewarrior
// intervals: task grouping, totals, idle detection and the display label.
package status

import (
	"errors"
)

// State is the tracking state reported to the status bar. The string value
// doubles as the CSS class of the bar widget.
type State string

const (
	StateActive  State = "active"
	StatePaused  State = "paused"
	StateIdle    State = "idle"
	StateStopped State = "stopped"
)

// Icon returns a single-glyph indicator for terminal output.
func (s State) Icon() string {
	switch s {
	case StateActive:
		return "●"
	case StatePaused:
		return "‖"
	case StateIdle:
		return "○"
	default:
		return "■"
	}
}

// ErrTagIndexOutOfRange is returned when the configured fallback tag index
// does not address any tag of the current task.
var ErrTagIndexOutOfRange = errors.New("fallback tag index out of range")

// EmptyTag is displayed for untagged tasks.
const EmptyTag = "empty"

// Status is the projected record for a single render.
type Status struct {
	State   State  `json:"class"`
	Text    string `json:"text"`
	Tooltip string `json:"tooltip,omitempty"`
}

// Stopped is the record used when there is nothing to report. Its empty
// text hides the widget.
var Stopped = Status{State: StateStopped}

// Options holds the static settings threaded into the projection.
type Options struct {
	ShowSeconds      bool
	TagDelimiter     string
	FallbackTagIndex int
	// IdleThresholdMinutes <= 0 means DefaultIdleThresholdMinutes.
	IdleThresholdMinutes int

	Tooltip     bool
	MaxTagWidth int // 0 = unlimited
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		ShowSeconds:          true,
		TagDelimiter:         "-",
		FallbackTagIndex:     -1,
		IdleThresholdMinutes: DefaultIdleThresholdMinutes,
	}
}
