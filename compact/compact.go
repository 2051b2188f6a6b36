// Package compact implements the in-place compaction primitive: rewrite
// a mutable dataset according to a monotone new->old index permutation,
// using a bounded scratch buffer so the rewrite never needs a full copy.
package compact

import (
	"context"
	"fmt"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/dataset"
	"github.com/hupe1980/svscore/threadpool"
)

// ErrDimensionMismatch is returned when data and buffer disagree on D.
type ErrDimensionMismatch struct {
	Data, Buffer int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("compact: dimension mismatch: data=%d buffer=%d", e.Data, e.Buffer)
}

// Compact rewrites data in place according to newToOld, a non-decreasing
// sequence of length M <= N where newToOld[j] is the old index that
// should end up at new index j. The rewrite proceeds in windows of
// buffer's capacity B:
//
//  1. parallel over j in [0, b): buffer[j] <- data[newToOld[s+j]]
//  2. parallel over j in [0, b): data[s+j] <- buffer[j]
//
// This is safe in place because monotonicity guarantees every read at
// new_to_old[s+j] >= s+j precedes any write to slot s+j within — or
// before — the current window. After the final window, indices [M, N)
// are left untouched; the caller is responsible for communicating the
// new logical size externally — Compact never resizes data.
//
// Monotonicity of newToOld is a caller contract; it is not checked on
// the hot path (see dataset's out-of-range-index contract). Dimension
// mismatch between data and buffer is the one runtime error.
//
// Compact takes no lock: it must not run concurrently with a search or
// any other reader of data.
func Compact[T dataset.Element](ctx context.Context, data, buffer dataset.Mutable[T], newToOld []uint64, pool *threadpool.Pool) error {
	if data.Dimensions() != buffer.Dimensions() {
		return &ErrDimensionMismatch{Data: data.Dimensions(), Buffer: buffer.Dimensions()}
	}

	b := buffer.Size()
	if b <= 0 {
		return fmt.Errorf("compact: buffer capacity must be >= 1")
	}

	m := len(newToOld)
	for s := 0; s < m; s += b {
		stop := s + b
		if stop > m {
			stop = m
		}
		window := newToOld[s:stop]

		err := pool.Run(ctx, threadpool.StaticPartition{NumWorkers: pool.NumWorkers()}, len(window),
			func(ctx context.Context, sl threadpool.Slice, workerID int) error {
				for j := sl.Start; j < sl.Stop; j++ {
					old := core.LocalID(window[j])
					v := data.GetDatum(old, dataset.Full)
					if err := buffer.SetDatum(core.LocalID(j), v); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return err
		}

		err = pool.Run(ctx, threadpool.StaticPartition{NumWorkers: pool.NumWorkers()}, len(window),
			func(ctx context.Context, sl threadpool.Slice, workerID int) error {
				for j := sl.Start; j < sl.Stop; j++ {
					v := buffer.GetDatum(core.LocalID(j), dataset.Full)
					if err := data.SetDatum(core.LocalID(s+j), v); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return err
		}
	}
	return nil
}
