package flat

import (
	"context"
	"testing"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/distance"
	"github.com/hupe1980/svscore/predicate"
	"github.com/hupe1980/svscore/topk"
	"github.com/hupe1980/svscore/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioRows() [][]float32 {
	return [][]float32{{0, 0}, {1, 0}, {0, 1}, {3, 4}, {5, 12}}
}

func idsOf(neighbors []topk.Neighbor) []core.LocalID {
	ids := make([]core.LocalID, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ID
	}
	return ids
}

func scoresOf(neighbors []topk.Neighbor) []float32 {
	scores := make([]float32, len(neighbors))
	for i, n := range neighbors {
		scores[i] = n.Score
	}
	return scores
}

// TestE1EuclideanNearestThree is spec scenario E1: Euclidean distance,
// query (0,0), k=3 over the five-point fixture.
func TestE1EuclideanNearestThree(t *testing.T) {
	d, err := dataset.NewSimple(scenarioRows())
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 2)
	require.NoError(t, err)

	result, err := e.Search(context.Background(), [][]float32{{0, 0}}, 3)
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, []core.LocalID{0, 1, 2}, idsOf(result[0]))
	assert.Equal(t, []float32{0, 1, 1}, scoresOf(result[0]))
}

// TestE2InnerProductNearestTwo is spec scenario E2: inner-product
// distance (maximize), query (1,1), k=2.
func TestE2InnerProductNearestTwo(t *testing.T) {
	d, err := dataset.NewSimple(scenarioRows())
	require.NoError(t, err)

	e, err := New[float32](d, distance.InnerProduct{}, 2)
	require.NoError(t, err)

	result, err := e.Search(context.Background(), [][]float32{{1, 1}}, 2)
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, []core.LocalID{4, 3}, idsOf(result[0]))
	assert.Equal(t, []float32{17, 7}, scoresOf(result[0]))
}

// TestE4PredicateExcludesOrigin is spec scenario E4: predicate P(i) =
// (i != 0) applied to the E1 fixture.
func TestE4PredicateExcludesOrigin(t *testing.T) {
	d, err := dataset.NewSimple(scenarioRows())
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 2)
	require.NoError(t, err)

	notOrigin := predicate.Predicate(func(id core.LocalID) bool { return id != 0 })
	result, err := e.Search(context.Background(), [][]float32{{0, 0}}, 3, WithPredicate(notOrigin))
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, []core.LocalID{1, 2, 3}, idsOf(result[0]))
}

// bruteForce computes the exact k-nearest-neighbor reference result for
// a single query via a straight sequential scan, independent of the
// engine's tiling/partitioning machinery, for comparison against
// TestExactness.
func bruteForce(rows [][]float32, query []float32, k int, dist distance.Distance[float32], pred predicate.Predicate) []topk.Neighbor {
	fixed := dist.FixArgument(query)
	type scored struct {
		id    core.LocalID
		score float32
	}
	var all []scored
	for i, row := range rows {
		id := core.LocalID(i)
		if pred != nil && !pred(id) {
			continue
		}
		all = append(all, scored{id: id, score: fixed.Compute(row)})
	}
	cmp := dist.Comparator()
	for i := 1; i < len(all); i++ {
		for j := i; j > 0; j-- {
			a, b := all[j-1], all[j]
			swap := cmp.Better(b.score, a.score)
			if !swap && b.score == a.score && b.id < a.id {
				swap = true
			}
			if !swap {
				break
			}
			all[j-1], all[j] = all[j], all[j-1]
		}
	}
	if k > len(all) {
		k = len(all)
	}
	out := make([]topk.Neighbor, k)
	for i := 0; i < k; i++ {
		out[i] = topk.Neighbor{ID: all[i].id, Score: all[i].score}
	}
	return out
}

// TestExactness is testable property 1: engine results match a
// sequential reference scan over a larger random dataset.
func TestExactness(t *testing.T) {
	rng := util.NewRNG(1)
	rows := rng.GenerateRandomVectors(200, 16)
	queries := rng.GenerateRandomVectors(10, 16)

	d, err := dataset.NewSimple(rows)
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 4)
	require.NoError(t, err)

	result, err := e.Search(context.Background(), queries, 5)
	require.NoError(t, err)

	for qi, query := range queries {
		want := bruteForce(rows, query, 5, distance.L2{}, predicate.AlwaysTrue)
		assert.Equal(t, want, result[qi])
	}
}

// TestDeterminismAcrossWorkersAndBatchSizes is testable property 2.
func TestDeterminismAcrossWorkersAndBatchSizes(t *testing.T) {
	rng := util.NewRNG(2)
	rows := rng.GenerateRandomVectors(150, 8)
	queries := rng.GenerateRandomVectors(20, 8)
	n := len(rows)

	var reference [][]topk.Neighbor
	for _, workers := range []int{1, 2, 4, 8} {
		for _, dataBatch := range []int{1, n / 3, n, 10 * n} {
			for _, queryBatch := range []int{1, len(queries), 0} {
				d, err := dataset.NewSimple(rows)
				require.NoError(t, err)

				e, err := New[float32](d, distance.L2{}, workers)
				require.NoError(t, err)
				e.SetDataBatchSize(dataBatch)
				e.SetQueryBatchSize(queryBatch)

				result, err := e.Search(context.Background(), queries, 5)
				require.NoError(t, err)

				if reference == nil {
					reference = result
					continue
				}
				assert.Equal(t, reference, result, "workers=%d dataBatch=%d queryBatch=%d", workers, dataBatch, queryBatch)
			}
		}
	}
}

// TestPredicateConsistency is testable property 3.
func TestPredicateConsistency(t *testing.T) {
	rng := util.NewRNG(3)
	rows := rng.GenerateRandomVectors(100, 8)
	query := rng.GenerateRandomVectors(1, 8)[0]

	d, err := dataset.NewSimple(rows)
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 4)
	require.NoError(t, err)

	even := predicate.Predicate(func(id core.LocalID) bool { return id%2 == 0 })

	full, err := e.Search(context.Background(), [][]float32{query}, len(rows))
	require.NoError(t, err)

	var wantFiltered []topk.Neighbor
	for _, n := range full[0] {
		if even(n.ID) {
			wantFiltered = append(wantFiltered, n)
		}
	}

	filtered, err := e.Search(context.Background(), [][]float32{query}, len(rows), WithPredicate(even))
	require.NoError(t, err)

	assert.Equal(t, wantFiltered, filtered[0])
}

// TestTopKMonotonicity is testable property 4.
func TestTopKMonotonicity(t *testing.T) {
	rng := util.NewRNG(4)
	rows := rng.GenerateRandomVectors(80, 8)
	query := rng.GenerateRandomVectors(1, 8)[0]

	d, err := dataset.NewSimple(rows)
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 3)
	require.NoError(t, err)

	small, err := e.Search(context.Background(), [][]float32{query}, 5)
	require.NoError(t, err)
	large, err := e.Search(context.Background(), [][]float32{query}, 12)
	require.NoError(t, err)

	assert.Equal(t, small[0], large[0][:5])
}

// TestThreadCountClamp is testable property 7.
func TestThreadCountClamp(t *testing.T) {
	d, err := dataset.NewSimple(scenarioRows())
	require.NoError(t, err)

	e, err := New[float32](d, distance.L2{}, 4)
	require.NoError(t, err)

	require.NoError(t, e.SetNumThreads(0))
	assert.GreaterOrEqual(t, e.GetNumThreads(), 1)

	_, err = e.Search(context.Background(), [][]float32{{0, 0}}, 2)
	require.NoError(t, err)
}

// TestE6Reproducibility is spec scenario E6: a 1,024-vector random
// dataset with fixed seed, Q=32, k=10, identical results across three
// (workers, data_tile, query_tile) configurations.
func TestE6Reproducibility(t *testing.T) {
	rng := util.NewRNG(6)
	rows := rng.GenerateRandomVectors(1024, 32)
	queries := rng.GenerateRandomVectors(32, 32)

	type config struct {
		workers   int
		dataTile  int
		queryTile int
	}
	configs := []config{
		{workers: 1, dataTile: 0, queryTile: 0},
		{workers: 4, dataTile: 100, queryTile: 0},
		{workers: 8, dataTile: 10, queryTile: 1},
	}

	var reference [][]topk.Neighbor
	for _, c := range configs {
		d, err := dataset.NewSimple(rows)
		require.NoError(t, err)

		e, err := New[float32](d, distance.L2{}, c.workers)
		require.NoError(t, err)
		e.SetDataBatchSize(c.dataTile)
		e.SetQueryBatchSize(c.queryTile)

		result, err := e.Search(context.Background(), queries, 10)
		require.NoError(t, err)

		if reference == nil {
			reference = result
			continue
		}
		assert.Equal(t, reference, result, "config=%+v", c)
	}
}
