package util

import (
	"time"
)

// StartOfDayUTC truncates to UTC midnight, the bucket key for daily aggregates
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
