package engine

import (
	"container/heap"
	"fmt"
)

// Scheduler is the global priority queue of (time, epsilon, receiver,
// payload, tag) dispatches. It owns the virtual clock: Now/Epsilon only
// change as a side effect of Run() dispatching the next event.
//
// Scheduling model is single-threaded cooperative (spec §5): a Receiver's
// ProcessEvent runs to completion with no yielding, and every "asynchronous"
// effect (routing latency, channel latency, credit delay) is modeled by
// scheduling a future event, never by blocking.
type Scheduler struct {
	queue   eventHeap
	now     int64
	epsilon int64
	nextSeq uint64
	stopped bool
	// dispatched is set once Run has dispatched an event; before that there
	// is no currently-dispatching epsilon to exceed.
	dispatched bool
}

// NewScheduler returns an empty scheduler with the clock at time zero.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	heap.Init(&s.queue)
	return s
}

// Now returns the time of the event currently being dispatched (or the last
// dispatched event, once Run returns).
func (s *Scheduler) Now() int64 { return s.now }

// Epsilon returns the sub-tick ordering index of the event currently being
// dispatched.
func (s *Scheduler) Epsilon() int64 { return s.epsilon }

// Schedule enqueues a future dispatch. It is a programming error (and panics,
// per spec §4.1) to schedule into the past, or at the current instant with an
// epsilon that does not strictly exceed the currently-dispatching epsilon.
// Before the first dispatch any epsilon at time zero is accepted.
func (s *Scheduler) Schedule(time, epsilon int64, receiver Receiver, payload any, tag Tag) {
	if time < s.now {
		panic(fmt.Sprintf("engine: scheduled time %d precedes now %d", time, s.now))
	}
	if time == s.now && s.dispatched && epsilon <= s.epsilon {
		panic(fmt.Sprintf("engine: scheduled epsilon %d does not exceed current epsilon %d at time %d", epsilon, s.epsilon, time))
	}
	heap.Push(&s.queue, &event{
		time:     time,
		epsilon:  epsilon,
		seq:      s.nextSeq,
		receiver: receiver,
		payload:  payload,
		tag:      tag,
	})
	s.nextSeq++
}

// Len reports the number of events still queued.
func (s *Scheduler) Len() int { return s.queue.Len() }

// Stop sets the cooperative stop flag; the run loop exits after the event
// currently executing returns. There is no per-event timeout and no
// preemption (spec §5).
func (s *Scheduler) Stop() { s.stopped = true }

// Run dequeues events in (time, epsilon, insertion-order) order and
// dispatches them until the queue drains or Stop is called. now is advanced
// to the dispatched event's time before the callback runs, and it never
// decreases (monotone virtual time, spec §8).
func (s *Scheduler) Run() {
	s.stopped = false
	for s.queue.Len() > 0 {
		if s.stopped {
			return
		}
		e := heap.Pop(&s.queue).(*event)
		if e.time < s.now {
			panic(fmt.Sprintf("engine: clock went backwards: %d < %d", e.time, s.now))
		}
		s.now = e.time
		s.epsilon = e.epsilon
		s.dispatched = true
		e.receiver.ProcessEvent(e.payload, e.tag)
	}
}
