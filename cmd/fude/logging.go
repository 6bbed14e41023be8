package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "fude.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes the standard logger. Raw mode owns the screen,
// so diagnostics can never go to stdout or stderr mid-session: they
// are discarded unless debugging is on, in which case they append to
// path, or to logs/fude.log when no path is configured. Returns the
// open log file, nil when logging is disabled.
func setupLogging(path string, debug bool) (*os.File, error) {
	if !debug && path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}

	if path == "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		path = filepath.Join(logDir, logFileName)
	}
	rotateLog(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening debug log: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return f, nil
}

// rotateLog moves an oversized log aside under a timestamped name so
// the file never grows without bound.
func rotateLog(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	stamp := time.Now().Format("20060102-150405")
	rotated := strings.TrimSuffix(path, ".log") + "-" + stamp + ".log"
	os.Rename(path, rotated)
}
