package engine

// eventHeap implements container/heap.Interface over event, ordering by
// (time, epsilon, seq) ascending. This is the same container/heap-backed
// priority queue shape as the teacher's cluster.EventHeap, generalized from
// its fixed (timestamp, type-priority, event-ID) key to the spec's
// (time, epsilon) pair plus a FIFO insertion-order tie-break.
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.time != b.time {
		return a.time < b.time
	}
	if a.epsilon != b.epsilon {
		return a.epsilon < b.epsilon
	}
	return a.seq < b.seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
