package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTime covers various valid and invalid cases.
func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "plural hours (mixed case)", input: "3 HoUrS AgO", expected: fixedNow.Add(-3 * time.Hour)},
		{name: "singular week", input: "1 Week Ago", expected: fixedNow.Add(-7 * 24 * time.Hour)},
		{name: "seconds", input: "90 seconds ago", expected: fixedNow.Add(-90 * time.Second)},
		{name: "missing ago", input: "2 days", expectError: true},
		{name: "unsupported unit", input: "4 decades ago", expectError: true},
		{name: "non-numeric value", input: "one day ago", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int64
		expectError bool
	}{
		{name: "rfc3339", input: "2025-11-03T09:00:00Z", expected: fixedNow.Add(-time.Hour).Unix()},
		{name: "unix seconds", input: "1700000000", expected: 1700000000},
		{name: "relative", input: "10 minutes ago", expected: fixedNow.Add(-10 * time.Minute).Unix()},
		{name: "garbage", input: "yesterday-ish", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.Unix())
		})
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    int64
		expectError bool
	}{
		{name: "plain seconds", input: "300", expected: 300},
		{name: "go duration", input: "1h", expected: 3600},
		{name: "human readable", input: "5 minutes", expected: 300},
		{name: "single day", input: "1 day", expected: 86400},
		{name: "zero", input: "0", expectError: true},
		{name: "sub-second", input: "500ms", expectError: true},
		{name: "fractional seconds", input: "1500ms", expectError: true},
		{name: "garbage", input: "often", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResolution(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// FuzzParseTimestamp fuzzes the ParseTimestamp function with random inputs.
func FuzzParseTimestamp(f *testing.F) {
	seeds := []string{
		"2025-11-03T09:00:00Z",
		"1700000000",
		"5 hours ago",
		"0 seconds ago", // edge case
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, input string) {
		_, err := ParseTimestamp(input, fixedNow)
		_ = err // we're testing for crashes
	})
}
