package formatter

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatNumber converts an integer to a string with commas as thousands separators.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	return humanize.Comma(int64(n))
}

// FormatBytes renders a payload size in binary units.
// Example: 4194304 -> "4.0 MiB"
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatAge describes how long ago a story was created relative to now.
func FormatAge(createdAtMs int64, now time.Time) string {
	created := time.UnixMilli(createdAtMs)
	if now.Sub(created) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

// FormatRemaining describes how long a story stays in the strip before it is archived.
func FormatRemaining(createdAtMs int64, retention time.Duration, now time.Time) string {
	expires := time.UnixMilli(createdAtMs).Add(retention)
	if !expires.After(now) {
		return "expired"
	}
	return humanize.RelTime(now, expires, "left", "")
}
