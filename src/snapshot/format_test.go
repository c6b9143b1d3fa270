package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, loc)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"earlier today", time.Date(2026, 3, 10, 0, 5, 0, 0, loc), "Today at 00:05"},
		{"yesterday late", time.Date(2026, 3, 9, 23, 59, 0, 0, loc), "Yesterday at 23:59"},
		{"yesterday early is still one calendar day", time.Date(2026, 3, 9, 0, 1, 0, 0, loc), "Yesterday at 00:01"},
		{"two days", time.Date(2026, 3, 8, 22, 0, 0, 0, loc), "2 days ago"},
		{"six days", time.Date(2026, 3, 4, 12, 0, 0, 0, loc), "6 days ago"},
		{"a week", time.Date(2026, 3, 3, 12, 0, 0, 0, loc), "Mar 3, 2026"},
		{"other year", time.Date(2025, 12, 25, 8, 0, 0, 0, loc), "Dec 25, 2025"},
		{"rendered in now's zone", time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC), "Today at 03:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.at.UnixMilli(), now))
		})
	}
}
