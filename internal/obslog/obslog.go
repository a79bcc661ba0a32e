// Package obslog wraps zap construction for the whole engine, following the
// teacher's cmd/server/main.go bootstrap (zap.NewProduction/NewDevelopment,
// zap.ReplaceGlobals, defer Sync).
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/saevarl/kontra"
)

// New builds a *zap.Logger from a kontra.LoggingConfig and installs it as the
// global logger, mirroring cmd/server/main.go's
// zap.NewProduction()+zap.ReplaceGlobals pattern. The caller owns calling
// Sync() on shutdown.
func New(cfg kontra.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Encoding = "console"
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.Encoding = "json"
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// ForRule returns a logger scoped to one rule's tier attempts. The pushdown
// executor uses it for failed statements; the preplan and fallback tiers do
// not log.
func ForRule(logger *zap.Logger, ruleID string, dialect kontra.Dialect) *zap.Logger {
	return logger.With(zap.String("rule_id", ruleID), zap.String("dialect", string(dialect)))
}
