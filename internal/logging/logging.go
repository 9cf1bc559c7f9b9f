// Package logging owns the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is the application-wide logger. It writes to stderr until the TUI
// redirects it to a file.
var Logger = NewLogger(os.Stderr)

// Flags holds the CLI flags that affect logging.
type Flags struct {
	Verbose bool
	Quiet   bool
	NoColor bool
	JSON    bool
	Level   string
}

// NewLogger creates a logger at WarnLevel writing to w.
func NewLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           log.WarnLevel,
		ReportTimestamp: true,
		Prefix:          "tminus",
	})
}

// Configure adjusts l from flags. Quiet wins over verbose; both win over an
// explicit level.
func Configure(l *log.Logger, f Flags) error {
	switch {
	case f.Quiet:
		l.SetLevel(log.ErrorLevel)
	case f.Verbose:
		l.SetLevel(log.DebugLevel)
	case f.Level != "":
		lvl, err := log.ParseLevel(strings.ToLower(f.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		l.SetLevel(lvl)
	default:
		l.SetLevel(log.WarnLevel)
	}

	if f.NoColor {
		l.SetColorProfile(termenv.Ascii)
	}
	if f.JSON {
		l.SetFormatter(log.JSONFormatter)
	}
	return nil
}

// ToFile redirects l to path, creating parent directories. The returned
// closer must be called on shutdown.
func ToFile(l *log.Logger, path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	l.SetColorProfile(termenv.Ascii)
	return f, nil
}
