// Package logging configures the process-wide zerolog logger.
//
// The terminal belongs to the UI, so logs go to a file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultFile = "reyvr/reyvr.log"

// ParseLevel maps a config level name to a zerolog level. Unknown or empty
// names give InfoLevel.
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New returns a logger writing human-readable lines to w.
func New(w io.Writer, level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// Path returns the log file to use: path when set, otherwise the default
// under the XDG state directory.
func Path(path string) (string, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	return xdg.StateFile(defaultFile)
}

// Setup points the global logger at the log file and returns the file so
// the caller can close it on exit.
func Setup(level, path string) (io.Closer, error) {
	p, err := Path(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = New(f, level)
	return f, nil
}
