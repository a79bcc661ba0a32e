package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saevarl/kontra"
)

func TestBuildVector_Int64(t *testing.T) {
	v := buildVector([]any{int64(1), nil, int32(3)})
	require.Equal(t, kontra.VectorInt64, v.Kind)
	assert.Equal(t, []int64{1, 0, 3}, v.Int64s)
	assert.Equal(t, []bool{true, false, true}, v.Valid)
}

func TestBuildVector_Float64(t *testing.T) {
	v := buildVector([]any{float64(1.5), float32(2.5)})
	require.Equal(t, kontra.VectorFloat64, v.Kind)
	assert.Equal(t, []float64{1.5, 2.5}, v.Float64s)
}

func TestBuildVector_String(t *testing.T) {
	v := buildVector([]any{"a", nil, "b"})
	require.Equal(t, kontra.VectorString, v.Kind)
	assert.Equal(t, []string{"a", "", "b"}, v.Strings)
	assert.False(t, v.Valid[1])
}

func TestBuildVector_Time(t *testing.T) {
	now := time.Now()
	v := buildVector([]any{now, nil})
	require.Equal(t, kontra.VectorTime, v.Kind)
	assert.True(t, v.Times[0].Equal(now))
	assert.False(t, v.Valid[1])
}

func TestBuildVector_AllNull(t *testing.T) {
	v := buildVector([]any{nil, nil})
	require.Equal(t, kontra.VectorString, v.Kind) // inferKind's fallback with no typed value
	assert.Equal(t, []bool{false, false}, v.Valid)
}

func TestBuildVector_TypeMismatchMarksInvalid(t *testing.T) {
	v := buildVector([]any{int64(1), "not an int"})
	require.Equal(t, kontra.VectorInt64, v.Kind)
	assert.True(t, v.Valid[0])
	assert.False(t, v.Valid[1])
}
