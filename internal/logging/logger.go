package logging

import (
	"fmt"
	"io"
	"os"
)

// Logger provides operator-facing diagnostics with redaction support.
// All output goes to the configured writer (stderr by default) so that
// rendered template output on stdout stays clean.
type Logger struct {
	out     io.Writer
	debug   bool
	noColor bool
}

// New creates a new logger writing to stderr.
func New(debug, noColor bool) *Logger {
	return NewWithWriter(os.Stderr, debug, noColor)
}

// NewWithWriter creates a logger writing to the given writer. Tests use
// this to capture diagnostics instead of scraping process output.
func NewWithWriter(out io.Writer, debug, noColor bool) *Logger {
	return &Logger{
		out:     out,
		debug:   debug,
		noColor: noColor,
	}
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[32m✓\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "✓ %s\n", msg)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[33m⚠\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "⚠ %s\n", msg)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[31m✗\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "✗ %s\n", msg)
	}
}

// Debug logs a debug message if debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(l.out, "\033[36m[DEBUG]\033[0m %s\n", msg)
	} else {
		fmt.Fprintf(l.out, "[DEBUG] %s\n", msg)
	}
}

// Secret represents a value that should be redacted in logs
type Secret string

// String implements the Stringer interface, always returning a redacted value
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting
func (s Secret) GoString() string {
	return "[REDACTED]"
}
