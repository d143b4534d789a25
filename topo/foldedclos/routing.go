package foldedclos

import (
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// ApexTracker remembers, per in-flight packet, whether it has already
// reached the top level of the folded-Clos tree (and so has switched from
// climbing to descending). It is shared by every router's McaRouting
// instance across one network, since a packet's climb/descend phase is
// network-wide state, not something a single router can observe locally.
//
// This replaces original_source/src/network/foldedclos/
// McaRoutingFunction.cc's per-input-port movingUpward test (derived from
// which physical port a flit arrived on): the core's Router holds one
// shared routing.Algorithm for all of its ports (see router/iq.go), so a
// per-port-instance algorithm the original assumes has no home here.
// Climbing in this algorithm is unconditional below the top level (a
// packet only turns downward once it reaches the top), so "arrived via a
// down-facing port" and "has not yet reached the top level" are the same
// fact; ApexTracker records that fact directly instead of reconstructing
// it from a port number the Algorithm interface does not carry.
type ApexTracker struct {
	reached map[*flow.Packet]bool
}

// NewApexTracker builds an empty tracker, to be shared by every router of
// one folded-Clos network.
func NewApexTracker() *ApexTracker {
	return &ApexTracker{reached: make(map[*flow.Packet]bool)}
}

func (t *ApexTracker) hasReachedApex(pkt *flow.Packet) bool { return t.reached[pkt] }

func (t *ApexTracker) markApex(pkt *flow.Packet) { t.reached[pkt] = true }

func (t *ApexTracker) forget(pkt *flow.Packet) { delete(t.reached, pkt) }

// McaRouting is the folded-Clos up*/down routing algorithm: a packet
// below the top level that has not yet reached the apex keeps climbing via
// a randomly chosen upward output port; once it reaches the top level (or
// has already turned downward at some ancestor), it descends by a direct
// lookup into the destination address vector at this router's level.
//
// Grounded on
// original_source/src/network/foldedclos/McaRoutingFunction.cc's
// movingUpward/atTopLevel branch and randomized upward port pick; see
// ApexTracker's doc comment for how the climb/descend test is adapted.
type McaRouting struct {
	latency   int64
	numPorts  int
	numLevels int
	level     int
	halfRadix int
	rng       *rand.Rand
	apex      *ApexTracker
	vcBase    int
	vcCount   int

	destAddress func(flit *flow.Flit) []int
}

// NewMcaRouting builds a folded-Clos routing algorithm instance for one
// router at the given level. rng should be a subsystem-partitioned stream
// (see runtime.PartitionedRNG) so the random upward pick stays
// reproducible; apex must be shared by every router in the network.
func NewMcaRouting(latency int64, numPorts, numLevels, level, halfRadix int, rng *rand.Rand, apex *ApexTracker, vcBase, vcCount int, destAddress func(flit *flow.Flit) []int) *McaRouting {
	if vcCount <= 0 {
		panic("foldedclos: vcCount must be > 0")
	}
	return &McaRouting{
		latency:     latency,
		numPorts:    numPorts,
		numLevels:   numLevels,
		level:       level,
		halfRadix:   halfRadix,
		rng:         rng,
		apex:        apex,
		vcBase:      vcBase,
		vcCount:     vcCount,
		destAddress: destAddress,
	}
}

// Latency implements routing.Algorithm.
func (m *McaRouting) Latency() int64 { return m.latency }

// ProcessRequest implements routing.Algorithm.
func (m *McaRouting) ProcessRequest(flit *flow.Flit) routing.Response {
	pkt := flit.Packet
	atTopLevel := m.level == m.numLevels-1
	descending := atTopLevel || m.apex.hasReachedApex(pkt)

	var outputPort int
	if !descending {
		outputPort = m.numPorts/2 + m.rng.Intn(m.numPorts/2)
	} else {
		if atTopLevel {
			m.apex.markApex(pkt)
		}
		dest := m.destAddress(flit)
		outputPort = dest[m.level]
		if m.level == 0 {
			m.apex.forget(pkt)
		}
	}

	candidates := make([]routing.Candidate, m.vcCount)
	for i := 0; i < m.vcCount; i++ {
		candidates[i] = routing.Candidate{Port: outputPort, VC: m.vcBase + i}
	}
	return routing.Response{Candidates: candidates, AllMinimal: false}
}
