package xslog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvKey names the variable that selects the minimum log level.
const EnvKey = "LOG_LEVEL"

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

const Default = LevelInfo

var slogLevels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

func Parse(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := slogLevels[l]; !ok {
		return "", fmt.Errorf("invalid log level %q, want one of debug, info, warn, error", s)
	}
	return l, nil
}

// FromEnv reads LOG_LEVEL, falling back to info when the variable is
// unset or unparseable. A bad level must not keep the service from
// starting.
func FromEnv() Level {
	l, err := Parse(os.Getenv(EnvKey))
	if err != nil {
		return Default
	}
	return l
}

func (l Level) ToSlog() slog.Level {
	if s, ok := slogLevels[l]; ok {
		return s
	}
	return slog.LevelInfo
}

func (l Level) String() string { return string(l) }

// NewLogger emits JSON lines, the format the log pipeline ingests.
func NewLogger(w io.Writer, level Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level.ToSlog(),
	}))
}

func NewLoggerFromEnv(w io.Writer) *slog.Logger {
	return NewLogger(w, FromEnv())
}
