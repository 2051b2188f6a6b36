package dataset

import (
	"fmt"

	"github.com/hupe1980/svscore/core"
)

// ErrDimensionMismatch is returned by constructors and SetDatum when a
// value's length disagrees with the dataset's configured dimension.
type ErrDimensionMismatch struct {
	Expected, Actual int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dataset: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Simple is a contiguous, in-memory, row-major Dataset. It is the
// reference implementation of the Dataset/Mutable contract: N and D are
// fixed at construction, get/set operate on exact [i*D, i*D+D) windows,
// and GetDatum handles are safe to read concurrently at distinct
// indices.
type Simple[T Element] struct {
	dim  int
	data []T
}

// NewSimpleOfSize allocates an all-zero dataset of n entries of
// dimension dim.
func NewSimpleOfSize[T Element](dim, n int) (*Simple[T], error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dataset: dimension must be positive, got %d", dim)
	}
	if n < 0 {
		return nil, fmt.Errorf("dataset: size must be non-negative, got %d", n)
	}
	return &Simple[T]{dim: dim, data: make([]T, n*dim)}, nil
}

// NewSimple builds a dataset from a slice of equal-length rows.
func NewSimple[T Element](rows [][]T) (*Simple[T], error) {
	if len(rows) == 0 {
		return &Simple[T]{dim: 0, data: nil}, nil
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("dataset: dimension must be positive")
	}
	data := make([]T, 0, len(rows)*dim)
	for _, r := range rows {
		if len(r) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(r)}
		}
		data = append(data, r...)
	}
	return &Simple[T]{dim: dim, data: data}, nil
}

// NewSimpleFromFlat wraps an already-flattened row-major buffer without
// copying. len(flat) must equal n*dim.
func NewSimpleFromFlat[T Element](flat []T, dim int) (*Simple[T], error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dataset: dimension must be positive, got %d", dim)
	}
	if len(flat)%dim != 0 {
		return nil, fmt.Errorf("dataset: flat buffer length %d is not a multiple of dim %d", len(flat), dim)
	}
	return &Simple[T]{dim: dim, data: flat}, nil
}

func (s *Simple[T]) Size() int       { return len(s.data) / max1(s.dim) }
func (s *Simple[T]) Dimensions() int { return s.dim }

func max1(d int) int {
	if d == 0 {
		return 1
	}
	return d
}

// GetDatum returns the contiguous window for entry i. The mode hint is
// ignored: Simple stores full-fidelity float/int data only, so fast and
// full handles are identical.
func (s *Simple[T]) GetDatum(i core.LocalID, _ AccessMode) []T {
	start := int(i) * s.dim
	return s.data[start : start+s.dim : start+s.dim]
}

// SetDatum overwrites entry i in place. v must have length Dimensions().
func (s *Simple[T]) SetDatum(i core.LocalID, v []T) error {
	if len(v) != s.dim {
		return &ErrDimensionMismatch{Expected: s.dim, Actual: len(v)}
	}
	start := int(i) * s.dim
	copy(s.data[start:start+s.dim], v)
	return nil
}

// Prefetch is a best-effort cache hint. The portable implementation is a
// volatile read of the first element, which is enough to trigger the
// hardware prefetcher on data about to be visited; it never mutates
// observable state.
func (s *Simple[T]) Prefetch(i core.LocalID) {
	start := int(i) * s.dim
	if start >= 0 && start < len(s.data) {
		_ = s.data[start]
	}
}

// RawData returns the underlying contiguous buffer. The returned slice
// aliases the dataset's storage; callers must not retain it across a
// concurrent SetDatum on an overlapping index.
func (s *Simple[T]) RawData() []T { return s.data }

var (
	_ Dataset[float32] = (*Simple[float32])(nil)
	_ Mutable[float32] = (*Simple[float32])(nil)
)
