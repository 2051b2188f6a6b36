package flat

import (
	"context"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/distance"
	"github.com/hupe1980/svscore/predicate"
	"github.com/hupe1980/svscore/threadpool"
	"github.com/hupe1980/svscore/topk"
)

// Validate runs an exact search restricted to candidates over a
// caller-owned dataset and pool, without constructing a permanent
// engine. This is the scoped exhaustive reranking pass an approximate
// index runs to validate or rerank a shortlist it has already narrowed
// down by other means: candidates is typically the union of several
// approximate indexes' result sets, or a recall-testing ground-truth
// restriction.
func Validate[T dataset.Element](ctx context.Context, data dataset.Dataset[T], dist distance.Distance[T], pool *threadpool.Pool, queries [][]T, k int, candidates predicate.Predicate) ([][]topk.Neighbor, error) {
	engine, err := NewTemporary(data, dist, pool)
	if err != nil {
		return nil, err
	}
	return engine.Search(ctx, queries, k, WithPredicate(candidates))
}

// ValidateSubset is Validate specialized to an explicit candidate id
// list, the common case when the candidate set is small (an
// approximate index's own top-k union) rather than already expressed
// as a predicate.
func ValidateSubset[T dataset.Element](ctx context.Context, data dataset.Dataset[T], dist distance.Distance[T], pool *threadpool.Pool, queries [][]T, k int, ids []core.LocalID) ([][]topk.Neighbor, error) {
	bitmap := predicate.BitmapOf(ids...)
	return Validate(ctx, data, dist, pool, queries, k, bitmap.Predicate())
}
