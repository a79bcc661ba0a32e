package kontra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_NegativeMaxConnections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.MaxConnections = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_ZeroCircuitBreakerThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Execution.CircuitBreakerThreshold = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_ZeroMaxInListSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Execution.MaxInListSize = 0
	assert.Error(t, cfg.Validate())
}
