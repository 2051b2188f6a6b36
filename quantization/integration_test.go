package quantization_test

import (
	"context"
	"testing"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/distance"
	"github.com/hupe1980/svscore/flat"
	"github.com/hupe1980/svscore/quantization"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlatEngineUsesAdaptedDistance proves the flat engine's
// Adapter[T] type-assertion actually reaches quantization.Dataset: a
// search over packed codes must prefer the code closest to the query
// under the quantizer's lookup-table distance, not under whatever
// bitwise ordering the raw codes happen to have. The query {6,6,6,6}
// packs to nibble 9 (0x99 per byte); raw Hamming ties rows 0 and 2 at 8
// bits and would return id 0, while the lookup-table L2 ranks row 2
// (4*4^2 = 64) ahead of row 1 (~87) and row 0 (144).
func TestFlatEngineUsesAdaptedDistance(t *testing.T) {
	rows := [][]float32{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{10, 10, 10, 10},
	}
	d, err := quantization.NewDataset(rows)
	require.NoError(t, err)

	e, err := flat.New[byte](d, distance.HammingBytes{}, 2)
	require.NoError(t, err)

	query, err := d.EncodeQuery([]float32{6, 6, 6, 6})
	require.NoError(t, err)

	result, err := e.Search(context.Background(), [][]byte{query}, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, result[0], 1)

	assert.Equal(t, core.LocalID(2), result[0][0].ID)
}
