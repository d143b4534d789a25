package butterfly

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// DestinationTagRouting is a k-ary butterfly's standard minimal routing
// algorithm: the router at stage s reads digit s of the destination's
// address vector and uses it directly as the output port, since a
// butterfly has exactly one path between any (source, destination) pair.
//
// The factory shell in original_source/src/network/butterfly/
// RoutingAlgorithm.cc threads a stage_/numPorts_ pair into every concrete
// butterfly routing algorithm but does not itself implement digit
// selection (its subclass was not retrieved in the pack); this is the
// conventional destination-tag algorithm that pairing is built for.
type DestinationTagRouting struct {
	latency     int64
	stage       int
	vcBase      int
	vcCount     int
	destAddress func(flit *flow.Flit) []int
}

// NewDestinationTagRouting builds a destination-tag routing algorithm for a
// router at the given stage.
func NewDestinationTagRouting(latency int64, stage, vcBase, vcCount int, destAddress func(flit *flow.Flit) []int) *DestinationTagRouting {
	if vcCount <= 0 {
		panic("butterfly: vcCount must be > 0")
	}
	return &DestinationTagRouting{latency: latency, stage: stage, vcBase: vcBase, vcCount: vcCount, destAddress: destAddress}
}

// Latency implements routing.Algorithm.
func (d *DestinationTagRouting) Latency() int64 { return d.latency }

// ProcessRequest implements routing.Algorithm: always minimal, since a
// butterfly has no alternate paths.
func (d *DestinationTagRouting) ProcessRequest(flit *flow.Flit) routing.Response {
	dest := d.destAddress(flit)
	if d.stage >= len(dest) {
		panic(fmt.Sprintf("butterfly: stage %d out of range for destination address of length %d", d.stage, len(dest)))
	}
	port := dest[d.stage]
	candidates := make([]routing.Candidate, d.vcCount)
	for i := 0; i < d.vcCount; i++ {
		candidates[i] = routing.Candidate{Port: port, VC: d.vcBase + i}
	}
	return routing.Response{Candidates: candidates, AllMinimal: true}
}
