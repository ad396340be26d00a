// Package logging provides the leveled, component-tagged logger shared by
// the engine's long-lived components. Verbosity comes from LOG_LEVEL; output
// goes through the standard log package so tagged lines interleave cleanly
// with the rest of the process log.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level represents logging verbosity
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a LOG_LEVEL name onto a Level. Unknown names and the
// empty string fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "WARN":
		return LevelWarn
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger writes leveled lines tagged with the owning component
type Logger struct {
	level Level
	tag   string
}

// New creates a logger for a component at an explicit verbosity
func New(component string, level Level) *Logger {
	return &Logger{level: level, tag: "[" + component + "] "}
}

// ForComponent creates a component logger at the LOG_LEVEL verbosity
func ForComponent(component string) *Logger {
	return New(component, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, "ERROR", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LevelWarn, "WARN", format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, "INFO", format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, "DEBUG", format, args...)
}

func (l *Logger) printf(level Level, name, format string, args ...interface{}) {
	if l.level >= level {
		log.Printf(l.tag+"["+name+"] "+format, args...)
	}
}
