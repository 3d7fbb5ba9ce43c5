package outwriter

import (
	"os"

	"github.com/huangsam/tschart/internal/contract"
	"golang.org/x/term"
)

// GetMaxSeriesNameWidth calculates the maximum width of a series column header
// in table output based on terminal width and the number of series shown.
func GetMaxSeriesNameWidth(cfg *contract.Config, seriesCount int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Time column and the flags column with borders/padding
	baseWidth := 22 + 14

	if seriesCount < 1 {
		seriesCount = 1
	}
	// Each series column carries a border and padding on top of its text
	available := (termWidth-baseWidth)/seriesCount - 3
	if available < 8 {
		return 8
	}
	if available > 40 {
		return 40
	}
	return available
}
