package router

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

// Ejector forwards at most one flit per core cycle from an IOQ router's
// local-output queue to the owning terminal. Violating that invariant is a
// programming error, not a runtime condition to recover from.
//
// Grounded on original_source/src/router/inputoutputqueued/Ejector.cc's
// receiveFlit: the C++ version asserts "lastSetTime_ != time || first call";
// this is the same check expressed as a panic.
type Ejector struct {
	name         string
	router       *IOQRouter
	portID       int
	sink         flow.ChannelSink
	lastSetCycle int64
	everSet      bool
}

// NewEjector builds an Ejector for the given IOQRouter local-output port,
// forwarding flits to sink (typically a netif.Interface's sink side).
func NewEjector(name string, r *IOQRouter, portID int, sink flow.ChannelSink) *Ejector {
	return &Ejector{name: name, router: r, portID: portID, sink: sink}
}

// ReceiveFlit implements flow.ChannelSink; it is also called directly by
// IOQRouter's output-queue drain each cycle.
func (e *Ejector) ReceiveFlit(flit *flow.Flit) {
	now := e.router.scheduler.Now()
	if e.everSet && e.lastSetCycle == now {
		panic(fmt.Sprintf("router: ejector %s forwarded more than one flit in cycle %d", e.name, now))
	}
	e.lastSetCycle = now
	e.everSet = true
	e.sink.ReceiveFlit(flit)
}

type outputQueueItem struct {
	unit *vcUnit
	flit *flow.Flit
}

// IOQRouter extends the IQ datapath with per-output queues and an Ejector
// per local-output port (spec §4.6). A flit that wins switch allocation is
// enqueued locally rather than sent immediately; downstream credit is
// consumed only when the queue actually drains the flit, so output-queue
// occupancy (not the crossbar's grant) drives downstream credit accounting.
type IOQRouter struct {
	*Router

	outputQueues [][]outputQueueItem // [port] FIFO
	ejectors     map[int]*Ejector
}

// NewIOQRouter builds an IOQRouter around an IQ Router built from cfg.
func NewIOQRouter(cfg Config) *IOQRouter {
	base := NewRouter(cfg)
	ioq := &IOQRouter{
		Router:       base,
		outputQueues: make([][]outputQueueItem, cfg.NumPorts),
		ejectors:     make(map[int]*Ejector),
	}
	base.self = ioq
	base.emit = func(unit *vcUnit, flit *flow.Flit) {
		ioq.outputQueues[unit.outPort] = append(ioq.outputQueues[unit.outPort], outputQueueItem{unit: unit, flit: flit})
	}
	return ioq
}

// SetEjector wires a local-output port to an Ejector forwarding to sink.
func (r *IOQRouter) SetEjector(port int, sink flow.ChannelSink) {
	r.ejectors[port] = NewEjector(fmt.Sprintf("%s.eject[%d]", r.name, port), r, port, sink)
}

// ProcessEvent implements engine.Receiver for the router's tick events,
// running the inherited IQ pipeline and then draining one flit per output
// queue.
func (r *IOQRouter) ProcessEvent(payload any, tag engine.Tag) {
	if tag != tagTick {
		panic(fmt.Sprintf("ioqrouter %s: unexpected event tag %d", r.name, tag))
	}
	r.Router.tick()
	r.drainOutputQueues()
	r.scheduleNextTick()
}

// drainOutputQueues forwards at most one flit per output port per cycle,
// consuming its downstream credit at the moment it actually leaves the
// queue: to the wired channel for network-facing ports, or to the port's
// Ejector for terminal-facing ports.
func (r *IOQRouter) drainOutputQueues() {
	now := r.scheduler.Now()
	for p := 0; p < r.numPorts; p++ {
		q := r.outputQueues[p]
		if len(q) == 0 {
			continue
		}
		item := q[0]
		r.outputQueues[p] = q[1:]

		r.outputCredits[p].DecrementCredit(item.flit.VC)
		item.unit.pendingOutputCredits++

		if ej, ok := r.ejectors[p]; ok {
			ej.ReceiveFlit(item.flit)
			continue
		}
		r.outputChannels[p].SetNextFlit(now, item.flit)
	}
}
