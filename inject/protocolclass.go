package inject

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/flow"
)

// ProtocolClassRange is the (baseVC, numVCs) pair reserved for one protocol
// class, mirroring Network::loadProtocolClassInfo's protocolClassVcs_
// table in original_source/src/network/Network.cc.
type ProtocolClassRange struct {
	BaseVC int
	NumVCs int
}

// ProtocolClass is an injection algorithm that restricts a packet's
// candidate VCs to the subrange owned by its message's protocol class,
// rather than offering the full VC space like AnyVC. This is the Go
// analogue of Torus::FixedSetsInjectionAlgorithm generalized across
// whichever protocol-class ranges the network configures, instead of a
// single fixed set baked into one topology's injection algorithm.
type ProtocolClass struct {
	latency int64
	ranges  []ProtocolClassRange // indexed by flow.ProtocolClass
}

// NewProtocolClass builds a ProtocolClass algorithm from the network's
// per-class VC ranges, in protocol-class order.
func NewProtocolClass(latency int64, ranges []ProtocolClassRange) *ProtocolClass {
	return &ProtocolClass{latency: latency, ranges: ranges}
}

// Latency implements Algorithm.
func (p *ProtocolClass) Latency() int64 { return p.latency }

// ProcessRequest implements Algorithm: offer every VC owned by pkt's
// message's protocol class.
func (p *ProtocolClass) ProcessRequest(pkt *flow.Packet) Response {
	class := int(pkt.Message.ProtocolClass)
	if class < 0 || class >= len(p.ranges) {
		panic(fmt.Sprintf("inject: protocol class %d has no configured VC range", class))
	}
	r := p.ranges[class]
	vcs := make([]int, r.NumVCs)
	for i := 0; i < r.NumVCs; i++ {
		vcs[i] = r.BaseVC + i
	}
	return Response{VCs: vcs}
}
