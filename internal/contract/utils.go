package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/tschart/schema"
)

// Point label constants.
const (
	RealLabel   = "real"
	FakeLabel   = "fake"
	NewestLabel = "newest"
	OldestLabel = "oldest"
)

// Color variables for console output.
var (
	WarnColor   = color.New(color.FgYellow, color.Bold) // WarnColor highlights warning prefixes.
	FatalColor  = color.New(color.FgRed, color.Bold)    // FatalColor highlights fatal prefixes.
	FakeColor   = color.New(color.FgMagenta)            // FakeColor marks synthesized points.
	NewestColor = color.New(color.FgCyan)               // NewestColor marks the unknown-future edge.
	OldestColor = color.New(color.FgYellow)             // OldestColor marks the start-of-history edge.
)

// GetPlainLabel returns a plain text label describing the boundary flags of a
// point, e.g. "fake,newest". This is the core logic used for CSV, JSON, and
// table printing.
func GetPlainLabel(p schema.Point) string {
	labels := make([]string, 0, 3)
	if p.Fake {
		labels = append(labels, FakeLabel)
	}
	if p.Newest {
		labels = append(labels, NewestLabel)
	}
	if p.Oldest {
		labels = append(labels, OldestLabel)
	}
	if len(labels) == 0 {
		return RealLabel
	}
	return strings.Join(labels, ",")
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(p schema.Point) string {
	text := GetPlainLabel(p)
	switch {
	case p.Fake:
		return FakeColor.Sprint(text)
	case p.Newest:
		return NewestColor.Sprint(text)
	case p.Oldest:
		return OldestColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", FatalColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the metric store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tschart_store.db"
	}
	return filepath.Join(homeDir, ".tschart_store.db")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the fetch cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".tschart_cache.db"
	}
	return filepath.Join(homeDir, ".tschart_cache.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
