package status

import (
	"time"

	"github.com/Dicklesworthstone/timebar/internal/timew"
)

// DefaultIdleThresholdMinutes applies when no threshold is configured.
const DefaultIdleThresholdMinutes = 10

// IsIdle reports whether a stopped interval ended more than thresholdMinutes
// before now. Open intervals are never idle.
func IsIdle(iv timew.Interval, now time.Time, thresholdMinutes int) bool {
	if iv.IsOpen() {
		return false
	}
	if thresholdMinutes <= 0 {
		thresholdMinutes = DefaultIdleThresholdMinutes
	}
	return now.Sub(iv.End.Time) > time.Duration(thresholdMinutes)*time.Minute
}
