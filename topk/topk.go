// Package topk implements the bulk top-k sorter: Q independent bounded
// heaps, one per query, each retaining the k best (id, score) pairs seen
// so far under a comparator.
package topk

import (
	"container/heap"

	"github.com/hupe1980/svscore/core"
	"github.com/hupe1980/svscore/distance"
)

// Neighbor is a single (id, score) result entry.
type Neighbor struct {
	ID    core.LocalID
	Score float32
}

// sentinelID is the reserved id used to pre-fill heaps before any real
// insertion; Cleanup drops entries still carrying it.
const sentinelID = core.MaxLocalID

// heapEntry is stored in each per-query max-heap (ordered so the current
// worst survivor is always at index 0, ready to be evicted on the next
// better insert). "Worst" is defined by the comparator: for an Ascending
// comparator this heap is a max-heap on Score; for Descending it is a
// min-heap on Score. Either way, items[0] is always the first candidate
// for eviction.
type heapEntry struct {
	Neighbor
}

type perQueryHeap struct {
	cmp   distance.Comparator
	items []heapEntry
}

func (h *perQueryHeap) Len() int { return len(h.items) }

// worse reports whether a ranks below b: a has the worse score under the
// comparator, or an equal score and a higher id (for stability).
func (h *perQueryHeap) worse(a, b Neighbor) bool {
	if a.Score != b.Score {
		return !h.cmp.Better(a.Score, b.Score)
	}
	// Tie-break by lower id first: among equal scores the entry with the
	// higher id is considered "worse" and evicted first.
	return a.ID > b.ID
}

func (h *perQueryHeap) Less(i, j int) bool {
	// A max-heap over "worseness": items[0] is the single worst entry.
	return h.worse(h.items[i].Neighbor, h.items[j].Neighbor)
}

func (h *perQueryHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *perQueryHeap) Push(x any)    { h.items = append(h.items, x.(heapEntry)) }
func (h *perQueryHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}

// BulkInserter is the bounded top-k collector the flat engine's workers
// push (id, score) pairs into. Capacity Q x k is fixed at construction.
// Insert is safe only when the caller serializes inserts for a given
// query index qi to a single worker at a time — the engine's
// query-slice ownership model guarantees this.
type BulkInserter struct {
	k     int
	cmp   distance.Comparator
	heaps []perQueryHeap
}

// New constructs a BulkInserter for q queries, k neighbors each, ordered
// by cmp. Call Prepare before the first Insert.
func New(q, k int, cmp distance.Comparator) *BulkInserter {
	return &BulkInserter{k: k, cmp: cmp, heaps: make([]perQueryHeap, q)}
}

// Prepare initializes all Q heaps, pre-filling each with k sentinels
// whose score is the comparator's worst possible value, so the first k
// real insertions per query succeed unconditionally without a capacity
// check.
func (b *BulkInserter) Prepare() {
	worst := b.cmp.Worst()
	for qi := range b.heaps {
		h := &b.heaps[qi]
		h.cmp = b.cmp
		h.items = make([]heapEntry, 0, b.k)
		for i := 0; i < b.k; i++ {
			h.items = append(h.items, heapEntry{Neighbor{ID: sentinelID, Score: worst}})
		}
		heap.Init(h)
	}
}

// Insert conditionally replaces the worst entry in the qi-th heap with
// (id, score) if it is better. O(log k) amortized.
func (b *BulkInserter) Insert(qi int, id core.LocalID, score float32) {
	h := &b.heaps[qi]
	if b.k == 0 {
		return
	}
	candidate := Neighbor{ID: id, Score: score}
	if !h.worse(h.items[0].Neighbor, candidate) {
		return
	}
	h.items[0] = heapEntry{candidate}
	heap.Fix(h, 0)
}

// Cleanup finalizes every heap by heap-sorting it best-first and
// dropping any remaining sentinels. After Cleanup, Result is valid.
func (b *BulkInserter) Cleanup() {
	for qi := range b.heaps {
		h := &b.heaps[qi]
		n := h.Len()
		sorted := make([]heapEntry, 0, n)
		for h.Len() > 0 {
			top := heap.Pop(h).(heapEntry).Neighbor
			if top.ID == sentinelID {
				continue
			}
			sorted = append(sorted, heapEntry{top})
		}
		// sorted is worst-first (heap pops the current worst survivor
		// first); reverse in place for a best-first result.
		for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
			sorted[i], sorted[j] = sorted[j], sorted[i]
		}
		h.items = sorted
	}
}

// Result returns the sorted (best-first) neighbors for query qi. Must be
// called after Cleanup. Returns fewer than k entries if fewer than k
// real values were ever inserted.
func (b *BulkInserter) Result(qi int) []Neighbor {
	items := b.heaps[qi].items
	out := make([]Neighbor, len(items))
	for i, e := range items {
		out[i] = e.Neighbor
	}
	return out
}

// Len returns Q, the number of independent heaps.
func (b *BulkInserter) Len() int { return len(b.heaps) }

// K returns the per-query capacity.
func (b *BulkInserter) K() int { return b.k }
