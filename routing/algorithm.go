// Package routing implements the routing-algorithm plug-in contract (spec
// §4.8): an asynchronous request/response pair that yields a non-empty set
// of candidate (outputPort, outputVC) pairs for a flit, plus congestion-
// based Reduction policies that can collapse that candidate set.
//
// Grounded on original_source/src/network/RoutingFunction.{h,cc}: the
// nested Client/Response classes there are re-architected per spec §9 as a
// Go interface plus a continuation invoked through the event scheduler,
// rather than a raw callback pointer.
package routing

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

// Candidate is one admissible (output port, output VC) pair.
type Candidate struct {
	Port int
	VC   int
}

// Response is filled in by an Algorithm's ProcessRequest and handed back to
// the requesting Client. AllMinimal indicates the response was reduced down
// to minimal-hop-only candidates (spec §4.8).
type Response struct {
	Candidates []Candidate
	AllMinimal bool
}

// Client receives a routing algorithm's response once its configured
// latency elapses.
type Client interface {
	RoutingResponse(flit *flow.Flit, resp *Response)
}

// Algorithm is the pluggable routing-function contract. Request schedules
// an asynchronous callback after Latency() cycles; implementations fill in
// the response by overriding ProcessRequest via the Algorithm interface
// itself (Go has no protected-method equivalent, so ProcessRequest is part
// of the public interface and Request is a shared helper built on top of
// it).
type Algorithm interface {
	// Latency returns the algorithm's configured response delay in core
	// cycles.
	Latency() int64
	// ProcessRequest computes the candidate set for flit. Must produce a
	// non-empty candidate set for any reachable destination (spec §7: an
	// empty response is an invariant violation, not a recoverable
	// condition).
	ProcessRequest(flit *flow.Flit) Response
}

const tagRoutingResponse engine.Tag = 10

type routingRequest struct {
	client Client
	flit   *flow.Flit
}

// Requester schedules Algorithm responses through an engine.Scheduler,
// matching the "asynchronous request" re-architecture called out in spec
// §9: the algorithm consumes the request after a deterministic delay and
// invokes the caller-supplied continuation via an event.
type Requester struct {
	scheduler *engine.Scheduler
	algorithm Algorithm
}

// NewRequester binds algorithm to sched.
func NewRequester(sched *engine.Scheduler, algorithm Algorithm) *Requester {
	return &Requester{scheduler: sched, algorithm: algorithm}
}

// Request schedules client.RoutingResponse to be invoked after the
// algorithm's configured latency, with a non-empty, invariant-checked
// response.
func (rq *Requester) Request(client Client, flit *flow.Flit) {
	now := rq.scheduler.Now()
	deliverAt := now + rq.algorithm.Latency()
	epsilon := int64(0)
	if deliverAt == now {
		epsilon = rq.scheduler.Epsilon() + 1
	}
	rq.scheduler.Schedule(deliverAt, epsilon, routingResponseReceiver{rq, client, flit}, nil, tagRoutingResponse)
}

type routingResponseReceiver struct {
	rq     *Requester
	client Client
	flit   *flow.Flit
}

func (r routingResponseReceiver) ProcessEvent(payload any, tag engine.Tag) {
	resp := r.rq.algorithm.ProcessRequest(r.flit)
	if len(resp.Candidates) == 0 {
		panic(fmt.Sprintf("routing: algorithm returned empty response for flit in packet %d", r.flit.Packet.ID))
	}
	r.client.RoutingResponse(r.flit, &resp)
}
