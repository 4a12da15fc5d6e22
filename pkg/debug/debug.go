// Package debug provides conditional debug logging for wb.
//
// Debug logging is enabled by setting the WB_DEBUG environment variable:
//
//	WB_DEBUG=1 wb 2>wb.log
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	import "github.com/vanderheijden86/widgetboard/pkg/debug"
//
//	debug.Log("committed card %s to %s", id, category)
//	debug.LogTiming("export", elapsed)
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when WB_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [WB_DEBUG] prefix
	logger *log.Logger
)

func init() {
	if os.Getenv("WB_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[WB_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
// Note: This also requires initializing the logger if not already done.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[WB_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. The TUI owns the terminal, so wb points
// the logger at a file while the program runs.
func SetOutput(w io.Writer) {
	if logger == nil {
		logger = log.New(w, "[WB_DEBUG] ", log.Ltime|log.Lmicroseconds)
		return
	}
	logger.SetOutput(w)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}
