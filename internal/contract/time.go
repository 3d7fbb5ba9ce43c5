package contract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Define the regular expression to capture "N [units] ago"
// e.g., "2 days ago", "3 hours ago", "1 week ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute|second)s?\s+ago$`)

// Define the regular expression to capture "N [units]".
var resolutionRe = regexp.MustCompile(`^(\d+)\s+(week|day|hour|minute|second)s?$`)

var unitDurations = map[string]time.Duration{
	"week":   7 * 24 * time.Hour,
	"day":    24 * time.Hour,
	"hour":   time.Hour,
	"minute": time.Minute,
	"second": time.Second,
}

// ParseRelativeTime converts strings like "2 hours ago" into a time.Time in the past.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	// 1: Value (e.g., "2")
	// 2: Unit (e.g., "hour")
	value, _ := strconv.Atoi(matches[1])
	return now.Add(-time.Duration(value) * unitDurations[matches[2]]), nil
}

// ParseTimestamp accepts an RFC3339 time, unix seconds, or a relative
// expression such as "3 hours ago".
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339, unix seconds or 'N [units] ago': %q", s)
	}
	return t, nil
}

// ParseResolution converts "300", "5m" or "5 minutes" into whole seconds.
func ParseResolution(s string) (int64, error) {
	s = strings.TrimSpace(s)

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return validResolution(time.Duration(secs) * time.Second)
	}

	// Try Go's built-in duration parsing first (e.g., "1h", "30s")
	if d, err := time.ParseDuration(s); err == nil {
		return validResolution(d)
	}

	matches := resolutionRe.FindStringSubmatch(strings.ToLower(s))
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid resolution format: %s", s)
	}
	value, _ := strconv.Atoi(matches[1])
	return validResolution(time.Duration(value) * unitDurations[matches[2]])
}

func validResolution(d time.Duration) (int64, error) {
	if d < time.Second {
		return 0, errors.New("resolution must be at least one second")
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("resolution must be a whole number of seconds: %s", d)
	}
	return int64(d / time.Second), nil
}
