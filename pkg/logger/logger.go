// Package logger wraps logrus with the installer's output conventions. The
// color decision is computed once at startup and passed in through Config;
// nothing here re-inspects the terminal.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields type is an alias for logrus.Fields
type Fields = logrus.Fields

// Config controls the global logger.
type Config struct {
	Level  string
	Format string // "text" or "json"
	File   string // optional rotating log file, stderr only when empty
	Color  bool   // resolved at startup from TTY/NO_COLOR/CI detection

	MaxSize    int // megabytes per rotated file
	MaxAge     int // days
	MaxBackups int
	Compress   bool
}

var globalLogger = logrus.New()

var baseFields = Fields{}

// Init initializes the global logger with the provided configuration.
func Init(config Config) error {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %v", err)
	}
	globalLogger.SetLevel(level)

	if config.Format == "json" {
		globalLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		globalLogger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			DisableSorting:         true,
			DisableLevelTruncation: true,
			ForceColors:            config.Color,
			DisableColors:          !config.Color,
			PadLevelText:           true,
			TimestampFormat:        "2006-01-02 15:04:05",
		})
	}

	// Diagnostics go to stderr; stdout is reserved for command output.
	outputs := []io.Writer{os.Stderr}

	if config.File != "" {
		rotateLogger := &lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    config.MaxSize,
			MaxAge:     config.MaxAge,
			MaxBackups: config.MaxBackups,
			Compress:   config.Compress,
		}
		if _, err := rotateLogger.Write([]byte("Logger initialization test\n")); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not write to log file %s: %v\n", config.File, err)
		} else {
			outputs = append(outputs, rotateLogger)
		}
	}

	if len(outputs) > 1 {
		globalLogger.SetOutput(io.MultiWriter(outputs...))
	} else {
		globalLogger.SetOutput(outputs[0])
	}

	return nil
}

// SetBaseFields registers fields attached to every component entry, such as
// the per-invocation run ID.
func SetBaseFields(fields Fields) {
	baseFields = fields
}

// Component returns an entry tagged with the given component name, plus any
// base fields registered via SetBaseFields.
func Component(name string) *logrus.Entry {
	entry := globalLogger.WithField("component", name)
	if len(baseFields) > 0 {
		entry = entry.WithFields(baseFields)
	}
	return entry
}
