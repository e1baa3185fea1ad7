package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "NXTCTL_LOG_LEVEL"

// zlogAdapter satisfies brick.Logger on top of zerolog.
type zlogAdapter struct {
	log zerolog.Logger
}

func (a zlogAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (a zlogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Info().Fields(keysAndValues).Msg(msg)
}

func (a zlogAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.Error().Fields(keysAndValues).Msg(msg)
}

// newLogger builds the console logger for one run. Any -v lowers the level
// to debug so transaction traces are visible.
func newLogger(out io.Writer, level string, verbosity int) zerolog.Logger {
	lvl := parseLevel(level, zerolog.InfoLevel)
	lvl = parseLevel(os.Getenv(EnvLogLevel), lvl)
	if verbosity > 0 && lvl > zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(out),
	}
	return zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("app", "nxtctl").
		Str("session", uuid.NewString()).
		Logger()
}

func parseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return fallback
	}
	lvl, err := zerolog.ParseLevel(raw)
	if err != nil {
		return fallback
	}
	return lvl
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
