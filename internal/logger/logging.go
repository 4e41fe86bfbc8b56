// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu  sync.RWMutex
	out io.Writer = os.Stdout
)

// SetOutput redirects the default logger and every logger created afterwards.
// IPC mode points this at stderr since stdout carries protocol frames.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
	log.SetOutput(w)
}

// Output returns the writer new loggers attach to.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return out
}

// New creates a new default charm log.
func New(prefix string) *log.Logger {
	return log.NewWithOptions(Output(), log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: log.GetLevel() == log.DebugLevel,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
