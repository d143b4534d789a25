package routing

import "github.com/hpinterconnect/interconnect-sim/flow"

// AddressOf resolves a router's position in its topology's dimension-sized
// address vector. Concrete topologies (package topo) supply this; routing
// algorithms depend only on the interface, never on a concrete topology.
type AddressOf func(routerID int) []int

// DimensionOrder is a minimal dimension-order routing algorithm: it routes
// a flit towards its destination by correcting the lowest-index dimension
// first where source and destination addresses differ, matching the "MCA"
// (multi-dimensional, dimension-order) style used by the folded-Clos and
// hyperx routing functions.
//
// Grounded on original_source/src/network/foldedclos/McaRoutingFunction.cc.
type DimensionOrder struct {
	latency     int64
	thisRouter  int
	addressOf   AddressOf
	portForDim  func(dim, delta int) int // maps a dimension + direction to an output port
	vcBase      int
	vcCount     int
	destAddress func(flit *flow.Flit) []int
}

// NewDimensionOrder constructs a dimension-order routing algorithm instance
// for one router.
func NewDimensionOrder(latency int64, thisRouter int, addressOf AddressOf, portForDim func(dim, delta int) int, vcBase, vcCount int, destAddress func(flit *flow.Flit) []int) *DimensionOrder {
	if vcCount <= 0 {
		panic("routing: vcCount must be > 0")
	}
	return &DimensionOrder{
		latency:     latency,
		thisRouter:  thisRouter,
		addressOf:   addressOf,
		portForDim:  portForDim,
		vcBase:      vcBase,
		vcCount:     vcCount,
		destAddress: destAddress,
	}
}

// Latency implements Algorithm.
func (d *DimensionOrder) Latency() int64 { return d.latency }

// ProcessRequest implements Algorithm: find the lowest-order dimension where
// the current router's address differs from the destination, and emit
// candidates across the protocol class's VC range at the port that
// direction maps to.
func (d *DimensionOrder) ProcessRequest(flit *flow.Flit) Response {
	here := d.addressOf(d.thisRouter)
	dest := d.destAddress(flit)

	for dim := 0; dim < len(here) && dim < len(dest); dim++ {
		if here[dim] == dest[dim] {
			continue
		}
		delta := 1
		if dest[dim] < here[dim] {
			delta = -1
		}
		port := d.portForDim(dim, delta)
		candidates := make([]Candidate, d.vcCount)
		for i := 0; i < d.vcCount; i++ {
			candidates[i] = Candidate{Port: port, VC: d.vcBase + i}
		}
		return Response{Candidates: candidates, AllMinimal: true}
	}

	// Already at destination's router: eject locally (port 0 is the
	// terminal-facing port by convention, per spec §4.7's interface wiring).
	candidates := make([]Candidate, d.vcCount)
	for i := 0; i < d.vcCount; i++ {
		candidates[i] = Candidate{Port: 0, VC: d.vcBase + i}
	}
	return Response{Candidates: candidates, AllMinimal: true}
}
