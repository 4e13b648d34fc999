package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"acuity_offchain_worker/internal/config"
	"acuity_offchain_worker/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppLoggerTo_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewAppLoggerTo(config.LoggerConfig{Level: config.LogLevelInfo, Format: config.LogFormatJSON}, &buf)
	require.NoError(t, err)

	l.Debug("hidden")
	l.With("component", "test").Info("visible", "port", 4000)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "test", record["component"])
	assert.EqualValues(t, 4000, record["port"])
}

func TestNewAppLoggerTo_TextUppercaseLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewAppLoggerTo(config.LoggerConfig{Level: "DEBUG", Format: "TEXT"}, &buf)
	require.NoError(t, err)

	l.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestNewAppLoggerTo_Errors(t *testing.T) {
	_, err := logger.NewAppLoggerTo(config.LoggerConfig{Level: "trace", Format: config.LogFormatJSON}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = logger.NewAppLoggerTo(config.LoggerConfig{Level: config.LogLevelInfo, Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSlogAdapter_StdLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.NewAppLoggerTo(config.LoggerConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, &buf)
	require.NoError(t, err)

	l.StdLogger().Print("http: TLS handshake error")
	assert.Contains(t, buf.String(), "TLS handshake error")
	assert.Contains(t, buf.String(), "level=ERROR")
}
