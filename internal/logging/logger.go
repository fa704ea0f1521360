package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Log formats accepted by NewWithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatAuto = "auto"
)

// New creates a configured application logger.
// It writes to Stderr so it never mixes with CIGI traffic dumps on Stdout.
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, options(level)))
}

// NewWithFormat creates a logger writing to Stderr in the given format.
// FormatAuto picks text on a terminal and JSON otherwise, so logs collected
// by a supervisor are machine readable.
func NewWithFormat(level slog.Level, format string) (*slog.Logger, error) {
	return newWithWriter(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level, format)
}

func newWithWriter(w io.Writer, isTerminal bool, level slog.Level, format string) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatAuto:
		if isTerminal {
			return slog.New(slog.NewTextHandler(w, options(level))), nil
		}
		return slog.New(slog.NewJSONHandler(w, options(level))), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, options(level))), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, options(level))), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func options(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
}
