package util

import (
	"strconv"
	"time"
)

// MonthName returns the English calendar name for m in 1..12, or "" otherwise.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}

// MonthStep returns the calendar month reached `step` months after
// `current` (step 1 is current itself) and how many year boundaries were crossed.
func MonthStep(current, step int) (month int, yearOffset int) {
	k := current - 1 + step - 1
	return k%12 + 1, k / 12
}

// ParseTime tries RFC3339, RFC3339Nano, SQL datetime and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}
