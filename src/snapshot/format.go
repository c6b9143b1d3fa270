package snapshot

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a unix-millis timestamp relative to now, by calendar day in now's location
func FormatTimestamp(ts int64, now time.Time) string {
	t := time.UnixMilli(ts).In(now.Location())

	switch days := calendarDays(t, now); {
	case days <= 0:
		return "Today at " + t.Format("15:04")
	case days == 1:
		return "Yesterday at " + t.Format("15:04")
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// calendarDays counts midnights between then and now
func calendarDays(then, now time.Time) int {
	y1, m1, d1 := then.Date()
	y2, m2, d2 := now.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
