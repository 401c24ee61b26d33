package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/trebuchet-org/catapult/internal/domain/config"
)

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger builds the stderr logger. --debug turns on debug level and
// source locations; CATAPULT_LOG_LEVEL overrides the level and
// CATAPULT_LOG_FORMAT=json switches to JSON lines for `catapult serve`.
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	return newLogger(cfg, os.Stderr, os.Getenv)
}

func newLogger(cfg *config.RuntimeConfig, w io.Writer, getenv func(string) string) *slog.Logger {
	debug := cfg != nil && cfg.Debug

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	if l, ok := parseLevel(getenv("CATAPULT_LOG_LEVEL")); ok {
		level = l
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.SourceKey:
				if src, ok := a.Value.Any().(*slog.Source); ok {
					src.File = shortPath(src.File)
				}
			}
			return a
		},
	}

	if strings.EqualFold(getenv("CATAPULT_LOG_FORMAT"), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// shortPath trims a source path to its module-relative form, or to
// "<dir>/<file>" when the module name is not in the path.
func shortPath(file string) string {
	if idx := strings.Index(file, "catapult/"); idx != -1 {
		return file[idx+len("catapult/"):]
	}
	return filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
}
