package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// InitLogger configures the global logrus logger.
// Logs always go to stderr so that stdout stays reserved for command output.
func InitLogger(level, format string) error {
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", LogFormatText:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: DateTimeFormat,
		})
	case LogFormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: DateTimeFormat,
		})
	default:
		return fmt.Errorf("invalid log format '%s'. must be text, json", format)
	}
	return nil
}
