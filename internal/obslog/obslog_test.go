package obslog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func TestNew_JSONFormat(t *testing.T) {
	logger, err := New(kontra.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync()
}

func TestNew_ConsoleFormat(t *testing.T) {
	logger, err := New(kontra.LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync()
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(kontra.LoggingConfig{Level: "not-a-level", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer logger.Sync()
}

func TestForRule_AddsFields(t *testing.T) {
	logger, err := New(kontra.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	defer logger.Sync()

	scoped := ForRule(logger, "rule-1", kontra.DialectPostgres)
	assert.NotNil(t, scoped)
	assert.NotSame(t, logger, scoped)
}
