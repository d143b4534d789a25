package hyperx

import (
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// DimOrderRouting is HyperX's dimension-order routing algorithm: since
// every dimension is a full crossbar, there is exactly one hop between any
// two router indices that differ in a single dimension, so minimal routing
// corrects the lowest-index differing dimension directly onto the port
// wired to that destination index (or ports, if the dimension carries more
// than one parallel link).
//
// Grounded directly on
// original_source/src/network/hyperx/DimOrderRoutingFunction.cc: the
// portBase accumulation over already-matched dimensions and the
// "wrap-around" distance computation for the differing dimension are
// carried over unchanged.
type DimOrderRouting struct {
	latency          int64
	routerAddress    []int // this router's address, one component per dimension
	dimensionWidths  []int
	dimensionWeights []int // parallel links per dimension; length == len(dimensionWidths)
	concentration    int
	vcBase           int
	vcCount          int
	destAddress      func(flit *flow.Flit) []int // [concentration, dim0, dim1, ...]
}

// NewDimOrderRouting builds a HyperX dimension-order routing algorithm
// instance for one router.
func NewDimOrderRouting(latency int64, routerAddress, dimensionWidths, dimensionWeights []int, concentration, vcBase, vcCount int, destAddress func(flit *flow.Flit) []int) *DimOrderRouting {
	if vcCount <= 0 {
		panic("hyperx: vcCount must be > 0")
	}
	if len(routerAddress) != len(dimensionWidths) || len(dimensionWidths) != len(dimensionWeights) {
		panic("hyperx: routerAddress, dimensionWidths, and dimensionWeights must have equal length")
	}
	return &DimOrderRouting{
		latency:          latency,
		routerAddress:    routerAddress,
		dimensionWidths:  dimensionWidths,
		dimensionWeights: dimensionWeights,
		concentration:    concentration,
		vcBase:           vcBase,
		vcCount:          vcCount,
		destAddress:      destAddress,
	}
}

// Latency implements routing.Algorithm.
func (d *DimOrderRouting) Latency() int64 { return d.latency }

// ProcessRequest implements routing.Algorithm.
func (d *DimOrderRouting) ProcessRequest(flit *flow.Flit) routing.Response {
	dest := d.destAddress(flit)

	dim := 0
	portBase := d.concentration
	for ; dim < len(d.routerAddress); dim++ {
		if d.routerAddress[dim] != dest[dim+1] {
			break
		}
		portBase += (d.dimensionWidths[dim] - 1) * d.dimensionWeights[dim]
	}

	var ports []int
	if dim == len(d.routerAddress) {
		ports = []int{dest[0]}
	} else {
		src := d.routerAddress[dim]
		dst := dest[dim+1]
		if dst < src {
			dst += d.dimensionWidths[dim]
		}
		offset := (dst - src - 1) * d.dimensionWeights[dim]
		for w := 0; w < d.dimensionWeights[dim]; w++ {
			ports = append(ports, portBase+offset+w)
		}
	}

	candidates := make([]routing.Candidate, 0, len(ports)*d.vcCount)
	for _, port := range ports {
		for i := 0; i < d.vcCount; i++ {
			candidates = append(candidates, routing.Candidate{Port: port, VC: d.vcBase + i})
		}
	}
	return routing.Response{Candidates: candidates, AllMinimal: true}
}
