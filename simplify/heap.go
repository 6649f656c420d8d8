package simplify

import (
	"container/heap"

	"github.com/smiley22/MeshSimplify/vecmath"
)

// pairKey canonically identifies an unordered vertex pair: v1 < v2 (§3 Pair).
type pairKey struct {
	v1, v2 int
}

func makeKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// pairItem is a candidate contraction, resident in the priority queue
// while index >= 0 (§3 Pair, §4.F).
type pairItem struct {
	v1, v2 int
	target vecmath.Vec
	cost   float64
	index  int // position in the heap slice, -1 when not resident
}

// pairHeap orders resident pairs ascending by cost, with ties broken by
// (v1, v2) for determinism (§4.F, §8 P6, §9 "tie-breaking").
type pairHeap []*pairItem

func (h pairHeap) Len() int { return len(h) }

func (h pairHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.cost != b.cost {
		return a.cost < b.cost
	}
	if a.v1 != b.v1 {
		return a.v1 < b.v1
	}
	return a.v2 < b.v2
}

func (h pairHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pairHeap) Push(x any) {
	item := x.(*pairItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// pairQueue is the priority queue of §4.F: insert/remove/pop-min/contains
// over resident pairs, with cost mutation only permitted while a pair is
// not resident (the contraction loop always removes before recomputing a
// pair's cost and re-inserts afterwards, preserving I5).
type pairQueue struct {
	h pairHeap
}

func newPairQueue() *pairQueue {
	return &pairQueue{h: make(pairHeap, 0)}
}

func (q *pairQueue) insert(p *pairItem) {
	heap.Push(&q.h, p)
}

func (q *pairQueue) remove(p *pairItem) {
	if p.index < 0 {
		return
	}
	heap.Remove(&q.h, p.index)
}

func (q *pairQueue) popMin() *pairItem {
	return heap.Pop(&q.h).(*pairItem)
}

func (q *pairQueue) contains(p *pairItem) bool {
	return p.index >= 0
}

func (q *pairQueue) len() int {
	return len(q.h)
}
