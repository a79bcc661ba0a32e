package preplan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

// fakeHandle is a minimal kontra.DatasetHandle for exercising FromHandle
// without a real backing store.
type fakeHandle struct {
	schema   kontra.Schema
	rowCount int64
	hasCount bool
}

func (f *fakeHandle) Dialect() kontra.Dialect { return kontra.DialectNone }
func (f *fakeHandle) Describe(context.Context, []string) (kontra.Schema, error) {
	return f.schema, nil
}
func (f *fakeHandle) Materialize(context.Context, []string) (*kontra.Frame, error) { return nil, nil }
func (f *fakeHandle) SQLRunner() (kontra.SQLRunnerFunc, bool)                      { return nil, false }
func (f *fakeHandle) RowCountHint(context.Context) (int64, bool)                   { return f.rowCount, f.hasCount }
func (f *fakeHandle) Close() error                                                 { return nil }

// fakeMetaHandle additionally implements kontra.MetadataResolver.
type fakeMetaHandle struct {
	fakeHandle
	hint kontra.ColumnStatsHint
}

func (f *fakeMetaHandle) ColumnStats(context.Context, string) (kontra.ColumnStatsHint, bool) {
	return f.hint, true
}

func TestFromHandle_DTypeAndRowCountOnly(t *testing.T) {
	h := &fakeHandle{
		schema:   kontra.Schema{Columns: []kontra.ColumnInfo{{Name: "price", DType: "float"}}},
		rowCount: 42,
		hasCount: true,
	}
	resolver := FromHandle(h)

	n, ok, err := resolver.RowCount(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	stats, err := resolver.ColumnStats(context.Background(), "price")
	require.NoError(t, err)
	assert.True(t, stats.HasDType)
	assert.Equal(t, "float", stats.DType)
	assert.False(t, stats.HasNullCount)
	assert.False(t, stats.HasMinMax)
}

func TestFromHandle_WithMetadataResolver(t *testing.T) {
	h := &fakeMetaHandle{
		fakeHandle: fakeHandle{
			schema: kontra.Schema{Columns: []kontra.ColumnInfo{{Name: "price", DType: "float"}}},
		},
		hint: kontra.ColumnStatsHint{HasNullCount: true, NullCount: 3, HasMinMax: true, Min: 0, Max: 100},
	}
	resolver := FromHandle(h)

	stats, err := resolver.ColumnStats(context.Background(), "price")
	require.NoError(t, err)
	assert.True(t, stats.HasNullCount)
	assert.Equal(t, int64(3), stats.NullCount)
	assert.True(t, stats.HasMinMax)
	assert.Equal(t, 100.0, stats.Max)
	assert.True(t, stats.HasDType) // Describe's dtype still wins when the hint doesn't carry one
	assert.Equal(t, "float", stats.DType)
}

func TestFromHandle_RowCountUnavailable(t *testing.T) {
	h := &fakeHandle{hasCount: false}
	resolver := FromHandle(h)

	_, ok, err := resolver.RowCount(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
