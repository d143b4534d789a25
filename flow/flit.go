// Package flow implements the flit/packet/message data hierarchy, the
// unidirectional Channel abstraction, per-VC credit accounting, and the
// congestion-status oracle consumed by routing algorithms.
package flow

// Flit is the atomic transfer unit: the flow-control digit allocated and
// transmitted by the router datapath.
//
// Invariant: exactly one Head and one Tail per packet; Index == 0 iff Head;
// Index == len(Packet.Flits)-1 iff Tail.
type Flit struct {
	Packet  *Packet // owning back-reference, non-owning from this flit's view
	Index   int     // position within the packet
	Head    bool
	Tail    bool
	VC      int   // assigned virtual channel, mutable while routed
	Created int64 // creation time (scheduler ticks)
}

// NewFlit constructs a flit at the given index within pkt, deriving Head/Tail
// from index and pkt's flit count.
func NewFlit(pkt *Packet, index int, createdAt int64) *Flit {
	return &Flit{
		Packet:  pkt,
		Index:   index,
		Head:    index == 0,
		Tail:    index == pkt.Size()-1,
		VC:      -1,
		Created: createdAt,
	}
}
