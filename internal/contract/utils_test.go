package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/measuresoftgram/msgram/schema"
)

func TestGetColorLabel(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label string
	}{
		{"poor", 0.1, schema.PoorValue},
		{"fair", 0.5, schema.FairValue},
		{"good", 0.7, schema.GoodValue},
		{"excellent", 0.95, schema.ExcellentValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, GetColorLabel(tt.score), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "report.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		require.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		excludes   []string
		wantIgnore bool
	}{
		{"empty excludes", "src/main.go", []string{}, false},
		{"directory prefix", "vendor/github.com/lib/file.go", []string{"vendor/"}, true},
		{"double star", "web/node_modules/react/index.js", []string{"**/node_modules/**"}, true},
		{"basename glob", "src/file.min.js", []string{"*.min.js"}, true},
		{"test suffix glob", "test/unit_test.go", []string{"*_test.go"}, true},
		{"anchored glob does not match deeper path", "a/src/gen.go", []string{"src/*.go"}, false},
		{"anchored glob", "src/gen.go", []string{"src/*.go"}, true},
		{"no match", "src/core/engine.go", []string{"vendor/", "node_modules/", "*.min.js"}, false},
		{"blank pattern skipped", "src/core/engine.go", []string{"  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIgnore, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".msgram_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir))

	analysisPath := GetAnalysisDBFilePath()
	assert.Contains(t, analysisPath, ".msgram_analysis.db")
	assert.NotEqual(t, cachePath, analysisPath)
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "src/a.go", TruncatePath("src/a.go", 20))
	assert.Equal(t, "...c/a.go", TruncatePath("deep/src/a.go", 9))
	assert.Equal(t, "deep/src/a.go", TruncatePath("deep/src/a.go", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}
