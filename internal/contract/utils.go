package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/skillpulse/skillpulse/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	SuccessColor  = color.New(color.FgGreen, color.Bold)   // SuccessColor represents a healthy signal.
)

// GetColorGrade returns a colored grade label for console output (table).
func GetColorGrade(grade schema.Grade) string {
	text := string(grade)
	switch grade {
	case schema.GradeAPlus, schema.GradeA:
		return SuccessColor.Sprint(text)
	case schema.GradeB:
		return LowColor.Sprint(text)
	case schema.GradeC:
		return ModerateColor.Sprint(text)
	default: // "D"
		return CriticalColor.Sprint(text)
	}
}

// GetColorPriority returns a colored priority label for console output (table).
func GetColorPriority(priority schema.Priority) string {
	text := string(priority)
	switch priority {
	case schema.PriorityHigh:
		return CriticalColor.Sprint(text)
	case schema.PriorityMedium:
		return ModerateColor.Sprint(text)
	case schema.PrioritySuccess:
		return SuccessColor.Sprint(text)
	default: // "low"
		return LowColor.Sprint(text)
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
	logrus.WithError(err).Error(msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logrus.WithError(err).Warn(msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for response cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".skillpulse_cache.db"
	}
	return filepath.Join(homeDir, ".skillpulse_cache.db")
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".skillpulse_snapshots.db"
	}
	return filepath.Join(homeDir, ".skillpulse_snapshots.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the suffix and at least one character.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
