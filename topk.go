// ═══════════════════════════════════════════════════════════════════════════════
// TOP-K SELECTION: Bounded Min-Heap
// ═══════════════════════════════════════════════════════════════════════════════
// Selecting the k best items out of n with a full sort costs O(n log n); a
// bounded heap does it in O(n log k) and never holds more than k items.
//
// THE TRICK:
// ----------
// The heap is ordered so the WORST of the current best k sits on top.
// Scanning the input:
//
//	- under capacity → push
//	- otherwise      → if the incoming item beats the top, pop and push
//
// At the end the heap holds exactly the k best items, and a final sort with
// the caller's comparator produces the canonical output order.
// ═══════════════════════════════════════════════════════════════════════════════

package flint

import (
	"container/heap"
	"sort"
)

// TopK returns the k best items under cmp, sorted by cmp.
//
// cmp(a, b) < 0 means a ranks before b. The output is a monotone
// non-decreasing sequence under cmp with length min(k, len(items));
// duplicates are preserved. A k ≤ 0 returns nil.
func TopK[T any](items []T, k int, cmp func(a, b T) int) []T {
	if k <= 0 {
		return nil
	}

	h := &boundedHeap[T]{cmp: cmp}
	for _, item := range items {
		if h.Len() < k {
			heap.Push(h, item)
			continue
		}
		// Full: replace the worst-of-the-best if the new item beats it.
		if cmp(item, h.items[0]) < 0 {
			h.items[0] = item
			heap.Fix(h, 0)
		}
	}

	out := make([]T, len(h.items))
	copy(out, h.items)
	sort.SliceStable(out, func(i, j int) bool { return cmp(out[i], out[j]) < 0 })
	return out
}

// boundedHeap keeps the worst-of-the-best on top by inverting cmp.
type boundedHeap[T any] struct {
	items []T
	cmp   func(a, b T) int
}

func (h *boundedHeap[T]) Len() int           { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool { return h.cmp(h.items[i], h.items[j]) > 0 }
func (h *boundedHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *boundedHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *boundedHeap[T]) Pop() any {
	last := len(h.items) - 1
	item := h.items[last]
	h.items = h.items[:last]
	return item
}
