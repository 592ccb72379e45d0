// Package logging prints strkit's colored console messages and mirrors
// them, with debug detail, to an optional log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/fatih/color"
)

var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	red    = color.New(color.Bold, color.FgRed).SprintFunc()
	grey   = color.New(color.FgHiBlack).SprintFunc()
)

// Logger writes console messages and, once a file is opened, log records.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	file    *os.File
	backend *slog.Backend
	log     slog.Logger
}

// New creates a console logger. Debug messages are shown only when verbose.
func New(out io.Writer, verbose bool) *Logger {
	return &Logger{out: out, verbose: verbose, log: slog.Disabled}
}

// TimestampedPath returns dir/localization_YYYYMMDD_HHMMSS.log.
func TimestampedPath(dir string, now time.Time) string {
	return filepath.Join(dir, "localization_"+now.Format("20060102_150405")+".log")
}

// OpenFile mirrors every message, debug included, to path.
func (l *Logger) OpenFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
	}
	l.file = f
	l.backend = slog.NewBackend(f)
	l.log = l.backend.Logger("STRK")
	l.log.SetLevel(slog.LevelDebug)
	return nil
}

// FilePath returns the path of the open log file, or "".
func (l *Logger) FilePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Subsystem returns a file logger tagged with tag for library packages.
// Without an open file it returns slog.Disabled.
func (l *Logger) Subsystem(tag string) slog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.backend == nil {
		return slog.Disabled
	}
	logger := l.backend.Logger(tag)
	logger.SetLevel(slog.LevelDebug)
	return logger
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.backend = nil
	l.log = slog.Disabled
	return err
}

func (l *Logger) print(tag, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", tag, msg)
}

// Info prints an informational message.
func (l *Logger) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.print(blue("[INFO]"), msg)
	l.log.Info(msg)
}

// Success prints a completion message.
func (l *Logger) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.print(green("[OK]"), msg)
	l.log.Info(msg)
}

// Warn prints a warning.
func (l *Logger) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.print(yellow("[WARN]"), msg)
	l.log.Warn(msg)
}

// Error prints an error.
func (l *Logger) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.print(red("[ERROR]"), msg)
	l.log.Error(msg)
}

// Debug prints detail when verbose and always records it in the log file.
func (l *Logger) Debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.verbose {
		l.print(grey("[DEBUG]"), msg)
	}
	l.log.Debug(msg)
}
