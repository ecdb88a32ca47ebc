// Package simlog provides the two logging primitives the simulation core
// needs: a fatal path for load errors and a warn path for non-fatal
// conditions. Both print directly to stderr
// rather than wrapping a structured logging library, matching how
// degraded-but-continuing setup failures are already reported elsewhere
// in this codebase.
package simlog

import (
	"fmt"
	"os"
)

// Fatal prints a tagged message to stderr and terminates the process
// with a non-zero status. The host uses it for load errors (the
// vehicle and pedestrian graphs and the semaphore file).
func Fatal(tag string, err error) {
	fmt.Fprintf(os.Stderr, "[%s] fatal: %v\n", tag, err)
	os.Exit(1)
}

// Warn prints a tagged, formatted message to stderr and returns. The
// host uses it for an unknown dispatch mode, a step before initialize,
// and a failed audio init; the semaphore loader skips malformed lines
// without calling it.
func Warn(tag, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[%s] warn: %s\n", tag, fmt.Sprintf(format, args...))
}
