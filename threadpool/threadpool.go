// Package threadpool implements the fixed-size worker pool and the
// static/dynamic index-range partitioners the flat search engine and the
// compaction primitive schedule work on.
package threadpool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/svscore/resource"
	"golang.org/x/sync/errgroup"
)

// Slice is a contiguous, half-open range of indices [Start, Stop)
// assigned to one worker invocation.
type Slice struct {
	Start, Stop int
}

// Len returns the number of indices in the slice.
func (s Slice) Len() int { return s.Stop - s.Start }

// Partition produces a sequence of slices collectively covering
// [0, N) exactly once.
type Partition interface {
	// Slices returns the worker assignment for an index range of size n.
	Slices(n int) []Slice
}

// StaticPartition splits [0, N) into NumWorkers nearly-equal contiguous
// ranges. Appropriate when per-item work is uniform.
type StaticPartition struct {
	NumWorkers int
}

func (p StaticPartition) Slices(n int) []Slice {
	workers := p.NumWorkers
	if workers < 1 {
		workers = 1
	}
	if n <= 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	base := n / workers
	rem := n % workers
	slices := make([]Slice, 0, workers)
	start := 0
	for w := 0; w < workers; w++ {
		size := base
		if w < rem {
			size++
		}
		if size == 0 {
			continue
		}
		slices = append(slices, Slice{Start: start, Stop: start + size})
		start += size
	}
	return slices
}

// DynamicPartition splits [0, N) into fixed-size chunks that workers pull
// atomically. Appropriate when per-item cost varies (e.g. predicate
// rejection skews work unevenly across the range).
type DynamicPartition struct {
	ChunkSize int
}

func (p DynamicPartition) Slices(n int) []Slice {
	chunk := p.ChunkSize
	if chunk < 1 {
		chunk = 1
	}
	if n <= 0 {
		return nil
	}
	slices := make([]Slice, 0, (n+chunk-1)/chunk)
	for start := 0; start < n; start += chunk {
		stop := start + chunk
		if stop > n {
			stop = n
		}
		slices = append(slices, Slice{Start: start, Stop: stop})
	}
	return slices
}

// Pool is a fixed-size worker pool. Resize is permitted only between
// Run calls; no resize is permitted while Run is executing (enforced by
// a run-in-progress guard).
type Pool struct {
	mu      sync.Mutex
	workers int
	running atomic.Bool

	// res, when non-nil, gates each dispatched slice on a background
	// worker slot so a pool's concurrency respects a shared, process-wide
	// resource budget rather than just its own worker count.
	res *resource.Controller
}

// New constructs a pool with the given worker count. Zero is silently
// promoted to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// NewWithController constructs a pool whose Run acquires a background
// worker slot from res for each dispatched slice, in addition to its own
// worker-count bound.
func NewWithController(workers int, res *resource.Controller) *Pool {
	p := New(workers)
	p.res = res
	return p
}

// NumWorkers returns the current worker count.
func (p *Pool) NumWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// CanChangeThreads reports whether the pool supports resizing. Always true.
func (p *Pool) CanChangeThreads() bool { return true }

// SetNumWorkers resizes the pool. n is clamped to >= 1. Returns an error
// if called while Run is executing.
func (p *Pool) SetNumWorkers(n int) error {
	if p.running.Load() {
		return ErrResizeDuringRun
	}
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	p.workers = n
	p.mu.Unlock()
	return nil
}

// Run invokes fn(slice, workerID) once per slice the partition produces
// over an index range of size n, bounded to the pool's worker count via
// an errgroup, and returns only after every slice has been processed (or
// the first error is observed). Slices are dispatched round-robin to
// worker ids in [0, NumWorkers()); within a slice, the caller's fn is
// expected to visit indices in ascending order.
func (p *Pool) Run(ctx context.Context, part Partition, n int, fn func(ctx context.Context, s Slice, workerID int) error) error {
	slices := part.Slices(n)
	if len(slices) == 0 {
		return nil
	}

	p.running.Store(true)
	defer p.running.Store(false)

	workers := p.NumWorkers()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range slices {
		s := s
		workerID := i % workers
		g.Go(func() error {
			if p.res != nil {
				if err := p.res.AcquireBackground(gctx); err != nil {
					return err
				}
				defer p.res.ReleaseBackground()
			}
			return fn(gctx, s, workerID)
		})
	}
	return g.Wait()
}
