// Package flat implements the exhaustive (brute-force) search engine:
// data-tiling outer loop, query-partitioned inner loop, patch kernel,
// and per-query top-k result materialization.
package flat

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/svscore"
	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/distance"
	"github.com/hupe1980/svscore/predicate"
	"github.com/hupe1980/svscore/resource"
	"github.com/hupe1980/svscore/threadpool"
	"github.com/hupe1980/svscore/topk"
)

const defaultDataBatchSize = 100_000

// Engine is the exhaustive search engine over a dataset of element type
// T. Each Search call is a pure function of its inputs plus the
// engine's current batch-size and thread-count configuration; the
// engine holds no search-level state machine.
type Engine[T dataset.Element] struct {
	data dataset.Dataset[T]
	dist distance.Distance[T]
	pool *threadpool.Pool

	// owning is true when the engine was constructed via New and
	// therefore manages its own pool; referencing engines borrow a
	// host's pool and dataset for a scoped exhaustive pass.
	owning bool

	dataBatchSize  atomic.Int64
	queryBatchSize atomic.Int64

	logger *svscore.Logger
	res    *resource.Controller
}

func newEngine[T dataset.Element](data dataset.Dataset[T], dist distance.Distance[T], pool *threadpool.Pool, owning bool, opts ...Option) *Engine[T] {
	cfg := options{logger: svscore.NoopLogger()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = svscore.NoopLogger()
	}
	e := &Engine[T]{
		data:   data,
		dist:   dist,
		pool:   pool,
		owning: owning,
		logger: cfg.logger,
		res:    cfg.res,
	}
	e.dataBatchSize.Store(int64(cfg.dataBatchSize))
	e.queryBatchSize.Store(int64(cfg.queryBatchSize))
	return e
}

// New constructs an owning engine: it allocates its own worker pool of
// numWorkers size (clamped to >= 1) over the given dataset and distance.
func New[T dataset.Element](data dataset.Dataset[T], dist distance.Distance[T], numWorkers int, opts ...Option) (*Engine[T], error) {
	if data == nil {
		return nil, svscore.NewContractViolation("flat.New: dataset must not be nil", nil)
	}
	cfg := options{}
	for _, o := range opts {
		o(&cfg)
	}
	pool := threadpool.NewWithController(numWorkers, cfg.res)
	return newEngine(data, dist, pool, true, opts...), nil
}

// NewReferencing constructs a referencing engine that borrows an
// externally owned dataset and pool rather than taking ownership. This
// is the mechanism an approximate index uses to run scoped exhaustive
// validation passes without duplicating the search algorithm.
func NewReferencing[T dataset.Element](data dataset.Dataset[T], dist distance.Distance[T], pool *threadpool.Pool, opts ...Option) (*Engine[T], error) {
	if data == nil {
		return nil, svscore.NewContractViolation("flat.NewReferencing: dataset must not be nil", nil)
	}
	if pool == nil {
		return nil, svscore.NewContractViolation("flat.NewReferencing: pool must not be nil", nil)
	}
	return newEngine(data, dist, pool, false, opts...), nil
}

// NewTemporary always constructs a referencing engine. It names the
// short-lived, scoped use case explicitly — a brute-force validation or
// reranking pass over a caller-owned dataset and pool — as distinct from
// a long-lived NewReferencing engine embedded permanently in a host
// index.
func NewTemporary[T dataset.Element](data dataset.Dataset[T], dist distance.Distance[T], pool *threadpool.Pool) (*Engine[T], error) {
	return NewReferencing(data, dist, pool)
}

// Owning reports whether the engine allocated and manages its own pool.
func (e *Engine[T]) Owning() bool { return e.owning }

// GetNumThreads returns the underlying pool's current worker count.
func (e *Engine[T]) GetNumThreads() int { return e.pool.NumWorkers() }

// CanChangeThreads reports whether the engine supports resizing its
// pool. Always true.
func (e *Engine[T]) CanChangeThreads() bool { return e.pool.CanChangeThreads() }

// SetNumThreads resizes the underlying pool. n is clamped to >= 1.
// Returns an error if called while a Search is in progress.
func (e *Engine[T]) SetNumThreads(n int) error {
	if n < 1 {
		n = 1
	}
	err := e.pool.SetNumWorkers(n)
	e.logger.LogThreadResize(context.Background(), n, e.pool.NumWorkers(), err)
	return err
}

// GetDataBatchSize returns the configured outer-loop tile size, or 0 if
// automatic.
func (e *Engine[T]) GetDataBatchSize() int { return int(e.dataBatchSize.Load()) }

// SetDataBatchSize sets the outer-loop tile size; n <= 0 means automatic.
func (e *Engine[T]) SetDataBatchSize(n int) {
	if n < 0 {
		n = 0
	}
	e.dataBatchSize.Store(int64(n))
}

// GetQueryBatchSize returns the configured inner-loop query slice size,
// or 0 if automatic.
func (e *Engine[T]) GetQueryBatchSize() int { return int(e.queryBatchSize.Load()) }

// SetQueryBatchSize sets the inner-loop query slice size; n <= 0 means
// automatic.
func (e *Engine[T]) SetQueryBatchSize(n int) {
	if n < 0 {
		n = 0
	}
	e.queryBatchSize.Store(int64(n))
}

// computeDataBatchSize resolves the configured (or automatic) outer-loop
// tile size against the current dataset size.
func (e *Engine[T]) computeDataBatchSize() int {
	if configured := e.GetDataBatchSize(); configured > 0 {
		return configured
	}
	n := e.data.Size()
	if n <= 0 {
		return 1
	}
	if n < defaultDataBatchSize {
		return n
	}
	return defaultDataBatchSize
}

// computeQueryBatchSize resolves the configured (or automatic)
// inner-loop query slice size against q and the pool's worker count.
func (e *Engine[T]) computeQueryBatchSize(q int) int {
	if configured := e.GetQueryBatchSize(); configured > 0 {
		return configured
	}
	workers := e.pool.NumWorkers()
	if workers < 1 {
		workers = 1
	}
	if q <= 0 {
		return 1
	}
	return (q + workers - 1) / workers
}

// Search allocates and returns a Q x k result: row i holds query i's
// k-best neighbors, sorted best-first by the distance's comparator.
func (e *Engine[T]) Search(ctx context.Context, queries [][]T, k int, opts ...SearchOption) ([][]topk.Neighbor, error) {
	result := make([][]topk.Neighbor, len(queries))
	if err := e.SearchInto(ctx, queries, k, result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// SearchInto fills a caller-provided result view in place: one row per
// query. Rows are replaced with a slice of the resolved neighbor count
// (<=k); existing capacity is reused when sufficient.
func (e *Engine[T]) SearchInto(ctx context.Context, queries [][]T, k int, result [][]topk.Neighbor, opts ...SearchOption) error {
	q := len(queries)
	if len(result) != q {
		return &ErrResultShapeMismatch{Queries: q, Rows: len(result)}
	}

	cfg := searchOptions{predicate: predicate.AlwaysTrue}
	for _, o := range opts {
		o(&cfg)
	}

	dim := e.data.Dimensions()
	for _, query := range queries {
		if len(query) != dim {
			return &ErrDimensionMismatch{Expected: dim, Actual: len(query)}
		}
	}

	if q == 0 {
		return nil
	}

	dist := distance.Distance[T](e.dist)
	if adapter, ok := e.data.(dataset.Adapter[T]); ok {
		dist = adapter.AdaptDistance(e.dist)
	}

	sorter := topk.New(q, k, dist.Comparator())
	sorter.Prepare()

	n := e.data.Size()
	tile := e.computeDataBatchSize()
	tiles := 0
	for start := 0; start < n; start += tile {
		stop := start + tile
		if stop > n {
			stop = n
		}
		if err := e.searchSubset(ctx, queries, start, stop, sorter, dist, cfg.predicate); err != nil {
			e.logger.LogSearch(ctx, q, k, tiles, err)
			return err
		}
		tiles++
	}
	sorter.Cleanup()

	err := e.pool.Run(ctx, threadpool.StaticPartition{NumWorkers: e.pool.NumWorkers()}, q,
		func(_ context.Context, sl threadpool.Slice, _ int) error {
			for i := sl.Start; i < sl.Stop; i++ {
				neighbors := sorter.Result(i)
				if cap(result[i]) >= len(neighbors) {
					result[i] = result[i][:len(neighbors)]
					copy(result[i], neighbors)
				} else {
					result[i] = append(result[i][:0], neighbors...)
				}
			}
			return nil
		})
	e.logger.LogSearch(ctx, q, k, tiles, err)
	return err
}

// searchSubset partitions the query range dynamically and, for each
// worker's slice, fixes a broadcast distance before handing the slice
// and the current data tile to searchPatch.
func (e *Engine[T]) searchSubset(ctx context.Context, queries [][]T, dataStart, dataStop int, sorter *topk.BulkInserter, dist distance.Distance[T], pred predicate.Predicate) error {
	chunk := e.computeQueryBatchSize(len(queries))
	return e.pool.Run(ctx, threadpool.DynamicPartition{ChunkSize: chunk}, len(queries),
		func(_ context.Context, sl threadpool.Slice, _ int) error {
			slice := queries[sl.Start:sl.Stop]
			bc := distance.NewBroadcast(dist, slice)
			e.searchPatch(dataStart, dataStop, sl.Start, bc, sorter, pred)
			return nil
		})
}

// searchPatch iterates the data tile in the outer loop and the query
// slice in the inner loop: this keeps the dataset handle x hot across
// every query in the slice (dataset-side cache residency), while the
// broadcast keeps each query's fixed-argument state hot in the
// per-worker evaluator.
func (e *Engine[T]) searchPatch(dataStart, dataStop, queryOffset int, bc *distance.Broadcast[T], sorter *topk.BulkInserter, pred predicate.Predicate) {
	for d := dataStart; d < dataStop; d++ {
		id := core.LocalID(d)
		if !pred(id) {
			continue
		}
		if d+1 < dataStop {
			e.data.Prefetch(core.LocalID(d + 1))
		}
		x := e.data.GetDatum(id, dataset.Full)
		for qi := 0; qi < bc.Len(); qi++ {
			score := bc.Compute(qi, x)
			sorter.Insert(queryOffset+qi, id, score)
		}
	}
}
