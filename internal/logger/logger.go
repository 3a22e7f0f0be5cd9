// Package logger provides verbose logging for docintel.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace the ingestion and answering pipelines.
// Notice messages are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr; nil restores the default. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

// emit writes under the lock so concurrent callers never interleave lines.
func emit(always bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, format, args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(false, "[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	emit(false, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(false, "[WARN] "+format+"\n", args...)
}

// Notice prints an operator-facing warning regardless of verbose mode.
func Notice(format string, args ...any) {
	emit(true, "[NOTICE] "+format+"\n", args...)
}

// Timed logs how long a pipeline stage took. Use with defer:
//
//	defer logger.Timed("embed", time.Now())
func Timed(stage string, start time.Time) {
	emit(false, "[DEBUG] %s took %s\n", stage, time.Since(start).Round(time.Millisecond))
}
