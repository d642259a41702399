package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sartorproj/arimasearch/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("order", "ARIMA(1,1,0)").Msg("search finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "search finished", entry["message"])
	assert.Equal(t, "ARIMA(1,1,0)", entry["order"])
	assert.Contains(t, entry, "time")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug().Int("d", 1).Msg("differencing selected")
	assert.Contains(t, buf.String(), "differencing selected")
	assert.Contains(t, buf.String(), "d=1")
}

func TestNewInvalid(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(config.LoggingConfig{Level: "loud", Format: "json"}, &buf)
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
