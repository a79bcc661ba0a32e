package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func TestNewEngine_NilConfig(t *testing.T) {
	eng, err := NewEngine(nil)
	assert.Nil(t, eng)
	assert.Error(t, err)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := kontra.DefaultConfig()
	cfg.Execution.MaxInListSize = -1

	eng, err := NewEngine(cfg)
	assert.Nil(t, eng)
	assert.Error(t, err)
}

func TestNewEngine_Success(t *testing.T) {
	cfg := kontra.DefaultConfig()

	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Len(t, eng.Registry().Variants(), 18)
}

func TestNewEngineWithRegistry_NilRegistry(t *testing.T) {
	cfg := kontra.DefaultConfig()

	eng, err := NewEngineWithRegistry(cfg, nil)
	assert.Nil(t, eng)
	assert.Error(t, err)
}

func TestNewEngineWithRegistry_Success(t *testing.T) {
	cfg := kontra.DefaultConfig()
	registry := kontra.NewRegistry()
	require.NoError(t, registry.Register(kontra.RuleNotNull, func() kontra.RuleParams { return &kontra.NotNullParams{} }))

	eng, err := NewEngineWithRegistry(cfg, registry)
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Equal(t, []kontra.RuleVariant{kontra.RuleNotNull}, eng.Registry().Variants())
}

func TestNewInMemoryDataset(t *testing.T) {
	frame := kontra.NewFrame([]string{"id"})
	frame.NumRows = 2
	frame.Columns["id"] = &kontra.Vector{Kind: kontra.VectorInt64, Int64s: []int64{1, 2}, Valid: []bool{true, true}}
	schema := kontra.Schema{Columns: []kontra.ColumnInfo{{Name: "id", DType: "int"}}}

	handle := NewInMemoryDataset(frame, schema)
	require.NotNil(t, handle)
	assert.Equal(t, kontra.DialectNone, handle.Dialect())

	n, ok := handle.RowCountHint(context.Background())
	assert.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestNewPostgresDataset(t *testing.T) {
	// PostgresHandle stores the pool as-is; a nil *pgxpool.Pool is enough to
	// verify the constructor wires schema/table defaulting without requiring
	// a live connection (Describe/Materialize are not exercised here).
	handle := NewPostgresDataset(nil, "", "listings")
	require.NotNil(t, handle)
	assert.Equal(t, kontra.DialectPostgres, handle.Dialect())

	sqlTable, ok := handle.(kontra.SQLTable)
	require.True(t, ok)
	assert.Equal(t, `"public"."listings"`, sqlTable.Table())
}

func TestNewDuckDBDataset_Disabled(t *testing.T) {
	cfg := kontra.DefaultConfig()
	cfg.DuckDB.Enabled = false

	handle, err := NewDuckDBDataset(cfg, "read_parquet('x.parquet')")
	assert.Nil(t, handle)
	assert.Error(t, err)
}
