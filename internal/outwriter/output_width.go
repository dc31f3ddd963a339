package outwriter

import (
	"os"

	"github.com/huangsam/culprit/internal/contract"
	"golang.org/x/term"
)

// getMaxKindsWidth calculates the maximum width for the kinds breakdown
// column in table output based on terminal width and table configuration.
func getMaxKindsWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns with table formatting
	baseWidth := 30 // Author + Defects with borders/padding

	// Share and Label columns with formatting
	baseWidth += 22

	// Calculate available space for the kinds breakdown
	available := termWidth - baseWidth
	if available < 16 {
		// Minimum reasonable breakdown width
		return 16
	}
	if available > 72 {
		// Maximum breakdown width to prevent overly long cells
		return 72
	}
	return available
}
