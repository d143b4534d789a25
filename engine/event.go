// Package engine implements the single-threaded discrete-event core: the
// priority-ordered event scheduler, clock-domain boundary arithmetic, and the
// named component tree that every other package in this module is built on.
package engine

// Tag distinguishes event sub-kinds when a single receiver handles several
// payload shapes through one Component (e.g. a channel dispatching both
// "flit arrived" and "credit returned" events to the same receiver).
type Tag int

// Receiver is any component capable of taking delivery of a scheduled event.
// ProcessEvent runs to completion; it must not schedule into the past and
// must not attempt to mutate Scheduler.Now().
type Receiver interface {
	ProcessEvent(payload any, tag Tag)
}

// event is the concrete entry stored in the scheduler's heap.
type event struct {
	time     int64
	epsilon  int64
	seq      uint64 // monotonic insertion counter: FIFO tie-break
	receiver Receiver
	payload  any
	tag      Tag
}
