package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/measuresoftgram/msgram/internal/contract"
)

// Width limits for source paths in tables.
const (
	fallbackTermWidth = 80
	minSourceWidth    = 15
	maxSourceWidth    = 70
)

// GetMaxTableSourceWidth calculates the maximum width for source paths in table output
// based on terminal width and the fixed columns that share the line.
func GetMaxTableSourceWidth(cfg *contract.Config, fixedColumns int) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = fallbackTermWidth // CI and pipes
		} else {
			termWidth = detectedWidth
		}
	}

	// Borders, separators and padding
	available := termWidth - fixedColumns - 20
	return max(minSourceWidth, min(available, maxSourceWidth))
}
