package status

import (
	"fmt"
	"time"
)

// FormatDuration renders d as HH:MM or HH:MM:SS. Hours are not wrapped at a
// day boundary and sub-second remainders are truncated. Negative durations
// render as zero.
func FormatDuration(d time.Duration, showSeconds bool) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if showSeconds {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
