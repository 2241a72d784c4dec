package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVarLogLevel selects the level for SetDefault.
const EnvVarLogLevel = "LOG_LEVEL"

// New returns a JSON logger tagged with module and version. Source locations
// are only recorded at debug level.
func New(w io.Writer, module, version, level string) *slog.Logger {
	lev := ParseLevel(level)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lev,
		AddSource: lev <= slog.LevelDebug,
	})).With("module", module, "version", version)
}

// SetDefault installs a stderr logger as slog's default, reading the level
// from LOG_LEVEL.
func SetDefault(module, version string) *slog.Logger {
	l := New(os.Stderr, module, version, os.Getenv(EnvVarLogLevel))
	slog.SetDefault(l)
	return l
}

// Discard drops everything; used where no logger was injected.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
