// Package logger is a small leveled logger shared by the CLI and the TUI.
// A nil *Logger discards everything, so components can take one optionally.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level controls verbosity.
type Level int

const (
	LevelOff Level = iota
	LevelNormal
	LevelVerbose
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelVerbose:
		return "verbose"
	default:
		return "normal"
	}
}

// ParseLevel maps a config value to a Level. Unknown values are normal.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "quiet":
		return LevelOff
	case "verbose", "debug":
		return LevelVerbose
	default:
		return LevelNormal
	}
}

// Logger writes prefixed lines at or below its level.
type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
}

// New creates a logger writing to out, or os.Stderr when out is nil.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{level: level, out: log.New(out, "", log.Ltime)}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(LevelOff, io.Discard)
}

// SetLevel changes the level at runtime.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelOff
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) emit(min Level, tag, format string, args []any) {
	if l == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level < min {
		return
	}
	_ = l.out.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

// Debug logs only in verbose mode.
func (l *Logger) Debug(format string, args ...any) { l.emit(LevelVerbose, "[DBG]", format, args) }

func (l *Logger) Info(format string, args ...any) { l.emit(LevelNormal, "[INF]", format, args) }

func (l *Logger) Warn(format string, args ...any) { l.emit(LevelNormal, "[WRN]", format, args) }

func (l *Logger) Error(format string, args ...any) { l.emit(LevelNormal, "[ERR]", format, args) }
