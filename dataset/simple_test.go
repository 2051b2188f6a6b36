package dataset

import (
	"testing"

	"github.com/hupe1980/svscore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleBasics(t *testing.T) {
	d, err := NewSimple([][]float32{{0, 0}, {1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Size())
	assert.Equal(t, 2, d.Dimensions())
	assert.Equal(t, []float32{1, 0}, d.GetDatum(1, Full))
}

func TestSimpleSetDatum(t *testing.T) {
	d, err := NewSimple([][]float32{{0, 0}, {1, 0}})
	require.NoError(t, err)
	require.NoError(t, d.SetDatum(0, []float32{9, 9}))
	assert.Equal(t, []float32{9, 9}, d.GetDatum(0, Full))

	err = d.SetDatum(0, []float32{1})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
}

func TestSimpleDimensionMismatchOnConstruct(t *testing.T) {
	_, err := NewSimple([][]float32{{0, 0}, {1}})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
}

func TestSimpleOfSizeAndFlat(t *testing.T) {
	d, err := NewSimpleOfSize[float32](3, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Size())
	assert.Equal(t, []float32{0, 0, 0}, d.GetDatum(2, Full))

	flat, err := NewSimpleFromFlat([]float32{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, flat.Size())
	assert.Equal(t, []float32{3, 4}, flat.GetDatum(core.LocalID(1), Full))
}

func TestSimplePrefetchNoPanic(t *testing.T) {
	d, _ := NewSimple([][]float32{{1, 2}})
	d.Prefetch(0)
	d.Prefetch(100) // out of range must not panic
}
