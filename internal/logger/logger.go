// Package logger provides opt-in verbose logging for the triage pipeline.
// Components log ingestion counts, retrieval hits and degradation events
// here; output is silent unless verbose mode is enabled.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects verbose logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debugf prints a message if verbose mode is enabled.
func Debugf(format string, args ...any) {
	logf("[DEBUG] ", format, args...)
}

// Warnf prints a warning if verbose mode is enabled. Degradation paths
// (backend down, parse failure) report through here and nowhere else.
func Warnf(format string, args ...any) {
	logf("[WARN] ", format, args...)
}

func logf(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}
