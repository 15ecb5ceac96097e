package core

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/measuresoftgram/msgram/internal/contract"
)

// logAnalysisHeader prints a concise, 2-line header for a measure run.
func logAnalysisHeader(w io.Writer, cfg *contract.Config) {
	names := make([]string, len(cfg.Inputs))
	for i, in := range cfg.Inputs {
		names[i] = filepath.Base(in)
	}
	sources := strings.Join(names, ", ")
	if sources == "" {
		sources = "none"
	}

	selection := "all"
	if cfg.ExplicitMeasures {
		keys := make([]string, len(cfg.Measures))
		for i, k := range cfg.Measures {
			keys[i] = k.String()
		}
		selection = strings.Join(keys, ", ")
	}

	if cfg.UseEmojis {
		_, _ = fmt.Fprintf(w, "🔎 Inputs: %s (Format: %s)\n", sources, cfg.InputFormat)
		_, _ = fmt.Fprintf(w, "📏 Measures: %s (Complexity: %s)\n", selection, cfg.ComplexityMode)
		return
	}
	_, _ = fmt.Fprintf(w, "Inputs: %s (Format: %s)\n", sources, cfg.InputFormat)
	_, _ = fmt.Fprintf(w, "Measures: %s (Complexity: %s)\n", selection, cfg.ComplexityMode)
}
