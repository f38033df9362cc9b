// Package logging provides the leveled diagnostic logger used by the CLI.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level represents logging verbosity.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

// ParseLevel maps a level name (any case) to a Level. Unknown names fall back to warn.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "INFO":
		return LevelInfo
	case "DEBUG", "TRACE":
		return LevelDebug
	default:
		return LevelWarn
	}
}

// Logger writes "[LEVEL] message" lines through the standard log package.
type Logger struct {
	level atomic.Int32
	out   *log.Logger
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{out: log.New(w, "", log.LstdFlags)}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the verbosity.
func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

// Level returns the current verbosity.
func (l *Logger) Level() Level { return Level(l.level.Load()) }

func (l *Logger) logf(level Level, tag, format string, args ...interface{}) {
	if l.Level() >= level {
		l.out.Printf("["+tag+"] "+format, args...)
	}
}

// Errorf logs error messages
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, "ERROR", format, args...) }

// Warnf logs warning messages
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(LevelWarn, "WARN", format, args...) }

// Infof logs info messages
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(LevelInfo, "INFO", format, args...) }

// Debugf logs debug messages
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, "DEBUG", format, args...) }

// Default is the process-wide logger, writing to stderr. Its initial level
// comes from LOG_LEVEL; the CLI overrides it from configuration.
var Default = New(os.Stderr, ParseLevel(os.Getenv("LOG_LEVEL")))

func SetLevel(level Level) { Default.SetLevel(level) }

func Errorf(format string, args ...interface{}) { Default.Errorf(format, args...) }

func Warnf(format string, args ...interface{}) { Default.Warnf(format, args...) }

func Infof(format string, args ...interface{}) { Default.Infof(format, args...) }

func Debugf(format string, args ...interface{}) { Default.Debugf(format, args...) }
