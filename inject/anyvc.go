package inject

import "github.com/hpinterconnect/interconnect-sim/flow"

// AnyVC is the trivial injection algorithm: every call offers the full VC
// range as candidates, leaving VC selection entirely to the allocator.
//
// Grounded on original_source/src/network/hyperx/AnyInjectionAlgorithm.cc.
type AnyVC struct {
	latency int64
	numVCs  int
}

// NewAnyVC builds an AnyVC algorithm offering VCs [0, numVCs) after latency
// cycles.
func NewAnyVC(latency int64, numVCs int) *AnyVC {
	return &AnyVC{latency: latency, numVCs: numVCs}
}

// Latency implements Algorithm.
func (a *AnyVC) Latency() int64 { return a.latency }

// ProcessRequest implements Algorithm: use all VCs.
func (a *AnyVC) ProcessRequest(pkt *flow.Packet) Response {
	vcs := make([]int, a.numVCs)
	for vc := 0; vc < a.numVCs; vc++ {
		vcs[vc] = vc
	}
	return Response{VCs: vcs}
}
