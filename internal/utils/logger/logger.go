// Package logger provides a small leveled logger on top of the standard log
// package.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	CRITICAL
)

// LogLevelString maps log levels to their string representations
var LogLevelString = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARN:     "WARN",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

// ParseLevel maps a configured level name to a LogLevel, defaulting to DEBUG.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "critical", "fatal":
		return CRITICAL
	}
	return DEBUG
}

// Logger writes prefixed, leveled lines. Messages below the minimum level
// are dropped, except CRITICAL which is always written.
type Logger struct {
	prefix  string
	min     LogLevel
	enabled bool
	out     *log.Logger
}

// New creates a logger writing to stdout.
func New(prefix string, level LogLevel, enabled bool) *Logger {
	return &Logger{
		prefix:  prefix,
		min:     level,
		enabled: enabled,
		out:     log.New(os.Stdout, "", log.LstdFlags),
	}
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, prefix string, level LogLevel) *Logger {
	return &Logger{
		prefix:  prefix,
		min:     level,
		enabled: true,
		out:     log.New(w, "", 0),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "", CRITICAL)
}

// With returns a child logger sharing the output with a nested prefix.
func (l *Logger) With(prefix string) *Logger {
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + "." + prefix
	} else {
		child.prefix = prefix
	}
	return &child
}

func (l *Logger) write(level LogLevel, format string, args ...interface{}) {
	if level != CRITICAL && (!l.enabled || level < l.min) {
		return
	}
	message := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.out.Printf("%s [%s] %s", LogLevelString[level], l.prefix, message)
		return
	}
	l.out.Printf("%s %s", LogLevelString[level], message)
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(DEBUG, format, args...)
}

// Infof logs an info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(INFO, format, args...)
}

// Warnf logs a warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(WARN, format, args...)
}

// Errorf logs an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(ERROR, format, args...)
}

// Criticalf is reserved for money that moved without a local record.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(CRITICAL, format, args...)
}
