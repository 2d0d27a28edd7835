package status

import (
	"time"

	"github.com/Dicklesworthstone/timebar/internal/timew"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func closed(id int, start, end time.Time, tags ...string) timew.Interval {
	e := timew.Time{Time: end}
	return timew.Interval{ID: id, Start: timew.Time{Time: start}, End: &e, Tags: tags}
}

func open(id int, start time.Time, tags ...string) timew.Interval {
	return timew.Interval{ID: id, Start: timew.Time{Time: start}, Tags: tags}
}
