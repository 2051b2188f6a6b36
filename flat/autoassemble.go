package flat

import (
	"context"

	"github.com/hupe1980/svscore/distance"
	"github.com/hupe1980/svscore/loader"
)

// AutoAssemble loads a float32 dataset by tag via loaders and wraps it
// in a new owning engine in one call — the one-shot path from a named
// dataset straight to a ready search engine.
func AutoAssemble(ctx context.Context, tag string, dist distance.Distance[float32], numWorkers int, loaders []loader.Loader, opts ...Option) (*Engine[float32], error) {
	if len(loaders) == 0 {
		loaders = loader.Default()
	}
	data, err := loader.Resolve(ctx, tag, loaders...)
	if err != nil {
		return nil, err
	}
	return New(data, dist, numWorkers, opts...)
}
