package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled, timestamped logging throughout the application.
// Debug lines are only written when verbose is enabled.
type Logger struct {
	out     *log.Logger
	err     *log.Logger
	prefix  string
	verbose bool
	now     func() time.Time
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, verbose)
}

// NewLoggerTo creates a Logger writing info/warn/debug to out and errors to errOut.
func NewLoggerTo(out, errOut io.Writer, verbose bool) *Logger {
	return &Logger{
		out:     log.New(out, "", 0),
		err:     log.New(errOut, "", 0),
		verbose: verbose,
		now:     time.Now,
	}
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return NewLoggerTo(io.Discard, io.Discard, false)
}

// With returns a copy of the logger that tags every line with component,
// e.g. "[driver]".
func (l *Logger) With(component string) *Logger {
	c := *l
	c.prefix = "[" + component + "] "
	return &c
}

func (l *Logger) timestamp() string {
	return l.now().Format("2006-01-02 15:04:05")
}

func (l *Logger) line(level, format string) string {
	return fmt.Sprintf("[%s] %s %s%s\n", l.timestamp(), level, l.prefix, format)
}

func (l *Logger) Info(format string, args ...any) {
	l.out.Printf(l.line("\033[32mINFO\033[0m ", format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.out.Printf(l.line("\033[33mWARN\033[0m ", format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(l.line("\033[31mERROR\033[0m", format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.out.Printf(l.line("\033[36mDEBUG\033[0m", format), args...)
}
