package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacked(t *testing.T) {
	var buf bytes.Buffer
	logger := NewPacked(&buf)

	logger.Info().Str("component", "sample").Msg("loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loaded", line["message"])
	assert.Equal(t, "sample", line["component"])
	assert.Equal(t, map[string]any{"version": Version}, line["app"])
}

func TestNewPretty_ReportsInputLength(t *testing.T) {
	var buf bytes.Buffer
	w := newPrettyWriter(&buf)

	in := []byte(`{"level":"info","message":"x"}` + "\n")
	n, err := w.Write(in)
	require.NoError(t, err)
	assert.Equal(t, len(in), n)
	assert.Contains(t, buf.String(), "message")
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wavedeck.log")

	logger, closer, err := Open(Options{Level: "debug", Format: "json", File: path})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger.Debug().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestOpen_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, _, err := Open(Options{Level: "loud", File: filepath.Join(t.TempDir(), "a.log")})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
