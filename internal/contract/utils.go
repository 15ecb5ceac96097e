package contract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"

	"github.com/measuresoftgram/msgram/schema"
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // ExcellentColor marks scores worth keeping.
	GoodColor      = color.New(color.FgCyan)              // GoodColor marks healthy scores.
	FairColor      = color.New(color.FgYellow)            // FairColor marks scores that need attention.
	PoorColor      = color.New(color.FgRed, color.Bold)   // PoorColor marks failing scores.
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score float64) string {
	text := schema.GetPlainLabel(score)

	switch text {
	case schema.ExcellentValue:
		return ExcellentColor.Sprint(text)
	case schema.GoodValue:
		return GoodColor.Sprint(text)
	case schema.FairValue:
		return FairColor.Sprint(text)
	default:
		return PoorColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// Patterns are doublestar globs ("vendor/**", "**/*_test.go"). A pattern without a
// slash is also tried against the base name, so "*.min.js" matches at any depth.
// Patterns ending with '/' match everything under that directory.
func ShouldIgnore(filePath string, excludes []string) bool {
	filePath = filepath.ToSlash(filePath)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		if strings.HasSuffix(ex, "/") {
			ex += "**"
		}
		if ok, err := doublestar.Match(ex, filePath); err == nil && ok {
			return true
		}
		if !strings.Contains(ex, "/") {
			if ok, err := doublestar.Match(ex, path.Base(filePath)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for report cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".msgram_cache.db"
	}
	return filepath.Join(homeDir, ".msgram_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".msgram_analysis.db"
	}
	return filepath.Join(homeDir, ".msgram_analysis.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
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
