package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qosst-scope/internal/config"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "test", config.LoggingConfig{Level: "warn"}, false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "samples", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "samples=42")
}

func TestNewVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "", config.LoggingConfig{Level: "error"}, true)
	require.NoError(t, err)

	logger.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "", config.LoggingConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}
