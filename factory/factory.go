// Package factory is Kontra's only constructor surface for concrete
// implementations: external callers build a kontra.Engine or a
// kontra.DatasetHandle here, never by reaching into internal/ directly.
// Grounded directly on the teacher's factory/factory.go
// (NewEntityManagerWithConfig): validate configuration, construct every
// concrete dependency in order, wire it behind the public interface, log each
// step with the package-global zap logger.
package factory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/saevarl/kontra"
	"github.com/saevarl/kontra/internal/dataset"
	"github.com/saevarl/kontra/internal/engine"
	"github.com/saevarl/kontra/internal/obslog"
)

// NewEngine builds a kontra.Engine from a validated Config. This is the
// primary way for external callers to construct an engine instance.
//
// Usage:
//
//	cfg := kontra.DefaultConfig()
//	eng, err := factory.NewEngine(cfg)
//	if err != nil {
//	    // handle error
//	}
func NewEngine(cfg *kontra.Config) (kontra.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("factory: config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("factory: invalid config: %w", err)
	}

	logger, err := obslog.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("factory: build logger: %w", err)
	}
	zap.S().Infow("kontra: logger ready", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	registry := kontra.DefaultRegistry()
	zap.S().Infow("kontra: rule registry ready", "variants", len(registry.Variants()))

	eng := engine.New(registry, cfg.Execution, logger)
	zap.S().Info("kontra: engine ready")
	return eng, nil
}

// NewEngineWithRegistry builds an engine over a caller-supplied registry
// instead of kontra.DefaultRegistry(), mirroring the teacher's
// config.SchemaRegistry override path - useful for tests that only need a
// subset of rule variants registered.
func NewEngineWithRegistry(cfg *kontra.Config, registry *kontra.Registry) (kontra.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("factory: config must not be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("factory: registry must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("factory: invalid config: %w", err)
	}

	logger, err := obslog.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("factory: build logger: %w", err)
	}
	return engine.New(registry, cfg.Execution, logger), nil
}

// NewDuckDBDataset builds a DatasetHandle backed by an embedded DuckDB
// connection over a local file or already-reachable object-store URI.
func NewDuckDBDataset(cfg *kontra.Config, source string) (kontra.DatasetHandle, error) {
	return dataset.NewDuckDBHandle(cfg.DuckDB, source)
}

// NewObjectStoreDataset builds a DatasetHandle over an S3-compatible object,
// materialized through the same DuckDB path as NewDuckDBDataset.
func NewObjectStoreDataset(ctx context.Context, cfg *kontra.Config, bucket, key, format string) (kontra.DatasetHandle, error) {
	return dataset.NewObjectStoreHandle(ctx, cfg.DuckDB, bucket, key, format)
}

// NewDownloadedObjectStoreDataset is the fallback for environments where
// DuckDB's httpfs extension isn't available: it downloads the object to a
// local temp file via the S3 transfer manager before handing it to DuckDB.
func NewDownloadedObjectStoreDataset(ctx context.Context, cfg *kontra.Config, bucket, key, format string) (kontra.DatasetHandle, error) {
	downloader, err := dataset.NewObjectStoreDownloader(ctx, cfg.DuckDB.S3Region, cfg.DuckDB.S3AccessKey, cfg.DuckDB.S3SecretKey)
	if err != nil {
		return nil, err
	}
	return dataset.NewDownloadedObjectStoreHandle(ctx, cfg.DuckDB, downloader, bucket, key, format)
}

// NewPostgresDataset builds a DatasetHandle over one schema-qualified table
// on an already-constructed pool; Kontra never owns the pool's lifecycle.
func NewPostgresDataset(pool *pgxpool.Pool, schema, table string) kontra.DatasetHandle {
	return dataset.NewPostgresHandle(pool, schema, table)
}

// NewInMemoryDataset wraps a Frame an embedder already holds in memory.
func NewInMemoryDataset(frame *kontra.Frame, schema kontra.Schema) kontra.DatasetHandle {
	return dataset.NewInMemoryHandle(frame, schema)
}
