package utils

import (
	"time"
)

const DisplayDateLayout = "January 2, 2006 at 3:04 PM MST"

// FormatTimestamp renders a provider RFC 3339 timestamp for email bodies.
// Unparseable input is returned unchanged; empty input uses now.
func FormatTimestamp(raw string, now time.Time) string {
	if raw == "" {
		return now.UTC().Format(DisplayDateLayout)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(DisplayDateLayout)
}
