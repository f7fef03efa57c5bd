package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a level name (case insensitive) to a Severity.
// An empty name selects SeverityInfo.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return SeverityDebug, nil
	case "", "info":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown log level %q", name)
}

func (s Severity) logrusLevel() logrus.Level {
	switch s {
	case SeverityDebug:
		return logrus.DebugLevel
	case SeverityWarning:
		return logrus.WarnLevel
	case SeverityError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger interface defines the logging contract for the demultiplexer
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// LogrusLogger implements the Logger interface on top of a logrus entry.
// Every line carries a "prefix" field naming the component that emitted it.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing prefixed text lines to w.
// A nil writer selects os.Stderr.
func NewLogger(w io.Writer, minLevel Severity) *LogrusLogger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(minLevel.logrusLevel())
	l.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return NewLoggerFrom(l, "tpiu")
}

// NewLoggerFrom wraps an existing logrus logger. The level and formatter of l
// are left untouched.
func NewLoggerFrom(l *logrus.Logger, prefix string) *LogrusLogger {
	return &LogrusLogger{entry: l.WithField("prefix", prefix)}
}

// WithPrefix returns a logger sharing the same output with a different prefix.
func (l *LogrusLogger) WithPrefix(prefix string) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField("prefix", prefix)}
}

// Log logs a message with the specified severity
func (l *LogrusLogger) Log(severity Severity, msg string) {
	l.entry.Log(severity.logrusLevel(), msg)
}

// Logf logs a formatted message with the specified severity
func (l *LogrusLogger) Logf(severity Severity, format string, args ...interface{}) {
	l.entry.Logf(severity.logrusLevel(), format, args...)
}

// Error logs an error
func (l *LogrusLogger) Error(err error) {
	if err != nil {
		l.entry.WithError(err).Error(err.Error())
	}
}

// Debug logs a debug message
func (l *LogrusLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *LogrusLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *LogrusLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string) {}

// Logf does nothing
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(err error) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string) {}
