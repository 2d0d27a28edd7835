package timew

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout is the compact UTC layout used by `timew export` (YYYYMMDDTHHMMSSZ).
const timeLayout = "20060102T150405Z"

// Time wraps time.Time with timewarrior's JSON encoding.
type Time struct {
	time.Time
}

// ParseTime parses a timewarrior timestamp. The compact export layout is tried
// first, then RFC 3339 for hand-written fixtures and other exporters.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q", ErrMalformedData, s)
	}
	return t, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Time.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: timestamp is not a string: %s", ErrMalformedData, strings.TrimSpace(string(b)))
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Time.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(timeLayout) + `"`), nil
}

// Interval is one tracked span as exported by timewarrior. An interval
// without End is the currently open one.
type Interval struct {
	ID    int      `json:"id"`
	Start Time     `json:"start"`
	End   *Time    `json:"end,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// IsOpen reports whether the interval is still being tracked.
func (iv Interval) IsOpen() bool {
	return iv.End == nil
}

// Span returns the tracked duration, measuring an open interval up to now.
func (iv Interval) Span(now time.Time) time.Duration {
	end := now
	if iv.End != nil {
		end = iv.End.Time
	}
	return end.Sub(iv.Start.Time)
}

// DecodeIntervals parses the JSON array produced by `timew export`.
func DecodeIntervals(data []byte) ([]Interval, error) {
	var intervals []Interval
	if err := json.Unmarshal(data, &intervals); err != nil {
		if errors.Is(err, ErrMalformedData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	for i, iv := range intervals {
		if iv.Start.IsZero() {
			return nil, fmt.Errorf("%w: interval %d has no start", ErrMalformedData, iv.ID)
		}
		if iv.End != nil && iv.End.Before(iv.Start.Time) {
			return nil, fmt.Errorf("%w: interval %d ends before it starts", ErrMalformedData, iv.ID)
		}
		if iv.IsOpen() && i != len(intervals)-1 {
			return nil, fmt.Errorf("%w: open interval %d is not the latest", ErrMalformedData, iv.ID)
		}
	}
	return intervals, nil
}

// Last returns the chronologically latest interval, or nil when there is none.
func Last(intervals []Interval) *Interval {
	if len(intervals) == 0 {
		return nil
	}
	return &intervals[len(intervals)-1]
}
