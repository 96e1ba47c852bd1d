package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillpulse/skillpulse/schema"
)

func TestGetColorGrade(t *testing.T) {
	for _, g := range []schema.Grade{schema.GradeAPlus, schema.GradeA, schema.GradeB, schema.GradeC, schema.GradeD} {
		t.Run(string(g), func(t *testing.T) {
			assert.Contains(t, GetColorGrade(g), string(g))
		})
	}
}

func TestGetColorPriority(t *testing.T) {
	for _, p := range []schema.Priority{schema.PriorityHigh, schema.PriorityMedium, schema.PriorityLow, schema.PrioritySuccess} {
		t.Run(string(p), func(t *testing.T) {
			assert.Contains(t, GetColorPriority(p), string(p))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".skillpulse_cache.db"))
	assert.True(t, strings.HasSuffix(GetSnapshotDBFilePath(), ".skillpulse_snapshots.db"))
	assert.NotEqual(t, GetCacheDBFilePath(), GetSnapshotDBFilePath())
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"shorter than width", "octocat", 20, "octocat"},
		{"exact width", "octocat", 7, "octocat"},
		{"truncated", "the-longest-handle", 10, "the-lon..."},
		{"width too small to truncate", "octocat", 3, "octocat"},
		{"multibyte", "日本語のハンドル名", 6, "日本語..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{" no ", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInitLogger(t *testing.T) {
	defer func() {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	}()

	require.NoError(t, InitLogger("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	_, isJSON := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)

	require.NoError(t, InitLogger("", ""))
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())

	assert.Error(t, InitLogger("loud", "text"))
	assert.Error(t, InitLogger("info", "xml"))
}
