package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	a := zlogAdapter{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	a.Debug("transaction", "op", "close", "opcode", "0x84")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "transaction", line["message"])
	assert.Equal(t, "close", line["op"])
	assert.Equal(t, "0x84", line["opcode"])
}

func TestNewLoggerLevels(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	var buf bytes.Buffer
	log := newLogger(&buf, "info", 0)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "session=")
	assert.False(t, strings.Contains(out, "\x1b["), "colour must be off for non-terminals")

	buf.Reset()
	log = newLogger(&buf, "info", 1)
	log.Debug().Msg("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestNewLoggerEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	var buf bytes.Buffer
	log := newLogger(&buf, "debug", 0)
	log.Info().Msg("suppressed")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN ", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("loud", zerolog.InfoLevel))
}
