// Package loader resolves a dataset tag — a local path or a scheme-
// prefixed remote URI — to an in-memory float32 dataset, the mechanism
// flat.AutoAssemble uses to go from a named dataset straight to a ready
// search engine.
package loader

import (
	"context"
	"fmt"

	"github.com/hupe1980/svscore/dataset"
)

// Loader reads a tagged dataset into memory. Accepts reports whether a
// given tag's scheme or extension is one this loader understands;
// Resolve tries loaders in order and uses the first that accepts.
type Loader interface {
	Accepts(tag string) bool
	Load(ctx context.Context, tag string) (dataset.Dataset[float32], error)
}

// Resolve loads tag with the first loader in loaders that accepts it.
func Resolve(ctx context.Context, tag string, loaders ...Loader) (dataset.Dataset[float32], error) {
	for _, l := range loaders {
		if l.Accepts(tag) {
			return l.Load(ctx, tag)
		}
	}
	return nil, fmt.Errorf("loader: no loader accepts tag %q", tag)
}

// Default returns the loader chain for formats resolvable without a
// live client: local native containers, the vecs family, and DiskANN
// bin files, in that order. S3 and MinIO require a configured client
// and must be added explicitly by the caller.
func Default() []Loader {
	return []Loader{
		NativeLoader{},
		VecsLoader{},
		DiskANNLoader{},
	}
}
