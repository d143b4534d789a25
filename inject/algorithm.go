// Package inject implements the injection-algorithm plug-in contract (spec
// §4.7): an asynchronous request/response pair that yields a non-empty set
// of candidate injection VCs for a packet about to enter the network.
//
// Grounded on original_source/src/network/InjectionAlgorithm.{h,cc}: the
// nested Client/Response classes there are re-architected per spec §9 as a
// Go interface plus a continuation invoked through the event scheduler,
// matching the same treatment routing/algorithm.go gives RoutingFunction.
package inject

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

// Response is filled in by an Algorithm's ProcessRequest and handed back to
// the requesting Client. Unlike a routing Response, injection candidates
// name only a VC: the injection port is fixed (an interface always injects
// on its single terminal port into the first router).
type Response struct {
	VCs []int
}

// Client receives an injection algorithm's response once its configured
// latency elapses.
type Client interface {
	InjectionResponse(pkt *flow.Packet, resp *Response)
}

// Algorithm is the pluggable injection-function contract. Request schedules
// an asynchronous callback after Latency() cycles; implementations fill in
// the response via ProcessRequest.
type Algorithm interface {
	// Latency returns the algorithm's configured response delay in core
	// cycles.
	Latency() int64
	// ProcessRequest computes the candidate VC set for pkt. Must produce a
	// non-empty set: a packet with nowhere to inject is a configuration
	// error, not a recoverable condition.
	ProcessRequest(pkt *flow.Packet) Response
}

const tagInjectionResponse engine.Tag = 20

// Requester schedules Algorithm responses through an engine.Scheduler, the
// same asynchronous re-architecture routing.Requester applies to routing
// functions.
type Requester struct {
	scheduler *engine.Scheduler
	algorithm Algorithm
}

// NewRequester binds algorithm to sched.
func NewRequester(sched *engine.Scheduler, algorithm Algorithm) *Requester {
	return &Requester{scheduler: sched, algorithm: algorithm}
}

// Request schedules client.InjectionResponse to be invoked after the
// algorithm's configured latency, with a non-empty, invariant-checked
// response.
func (rq *Requester) Request(client Client, pkt *flow.Packet) {
	now := rq.scheduler.Now()
	deliverAt := now + rq.algorithm.Latency()
	epsilon := int64(0)
	if deliverAt == now {
		epsilon = rq.scheduler.Epsilon() + 1
	}
	rq.scheduler.Schedule(deliverAt, epsilon, injectionResponseReceiver{rq, client, pkt}, nil, tagInjectionResponse)
}

type injectionResponseReceiver struct {
	rq     *Requester
	client Client
	pkt    *flow.Packet
}

func (r injectionResponseReceiver) ProcessEvent(payload any, tag engine.Tag) {
	resp := r.rq.algorithm.ProcessRequest(r.pkt)
	if len(resp.VCs) == 0 {
		panic(fmt.Sprintf("inject: algorithm returned empty response for packet %d", r.pkt.ID))
	}
	r.client.InjectionResponse(r.pkt, &resp)
}
