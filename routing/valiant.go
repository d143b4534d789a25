package routing

import "github.com/hpinterconnect/interconnect-sim/flow"

// NonMinimalWeightFunc scores a non-minimal candidate. Per spec §9, this
// deliberately ignores any minimal-hop information and computes a weight
// strictly over non-minimal terms plus a constant independentBias — this
// preserves the original RegularNonMinimalWeightFunc's specified behavior
// rather than "fixing" it to consider minimal candidates.
type NonMinimalWeightFunc func(candidate Candidate, congestion CongestionLookup, inPort, inVC int) float64

// DefaultNonMinimalWeight scores a non-minimal candidate purely by
// (1 - congestion) + independentBias, never consulting any minimal-hop
// candidate or distance information (spec §9).
func DefaultNonMinimalWeight(independentBias float64) NonMinimalWeightFunc {
	return func(candidate Candidate, congestion CongestionLookup, inPort, inVC int) float64 {
		cong := congestion(inPort, inVC, candidate.Port, candidate.VC)
		return (1.0 - cong) + independentBias
	}
}

// Valiant wraps a minimal routing algorithm with non-minimal (Valiant-style)
// candidates: it offers the minimal algorithm's candidates (unless built by
// NewValiantNonMinimalOnly) plus the best-weighted of a configured set of
// non-minimal candidates, for deadlock avoidance / load-balancing
// topologies that need it.
//
// Grounded on the dragonfly/hyperx-style minimal+non-minimal candidate
// construction in original_source (RoutingAlgorithm.cc variants) and the
// RegularNonMinimalWeightFunc note preserved verbatim per spec §9.
type Valiant struct {
	minimal         Algorithm
	nonMinimalPorts func(flit *flow.Flit) []Candidate
	weight          NonMinimalWeightFunc
	congestion      CongestionLookup
	inPort          int
	includeMinimal  bool
}

// NewValiant builds a Valiant-style routing algorithm around a minimal
// algorithm and a supplier of non-minimal candidates. The minimal
// algorithm's own candidates are always offered alongside the non-minimal
// one; use NewValiantNonMinimalOnly to restrict a flit to the non-minimal
// candidate exclusively.
func NewValiant(minimal Algorithm, nonMinimalPorts func(flit *flow.Flit) []Candidate, weight NonMinimalWeightFunc, congestion CongestionLookup, inPort int) *Valiant {
	return &Valiant{
		minimal:         minimal,
		nonMinimalPorts: nonMinimalPorts,
		weight:          weight,
		congestion:      congestion,
		inPort:          inPort,
		includeMinimal:  true,
	}
}

// NewValiantNonMinimalOnly builds a Valiant-style routing algorithm that
// offers only the single best-weighted non-minimal candidate, never the
// minimal algorithm's own candidates, for topologies whose deadlock-avoidance
// scheme requires strictly leaving the minimal path once detoured.
func NewValiantNonMinimalOnly(minimal Algorithm, nonMinimalPorts func(flit *flow.Flit) []Candidate, weight NonMinimalWeightFunc, congestion CongestionLookup, inPort int) *Valiant {
	v := NewValiant(minimal, nonMinimalPorts, weight, congestion, inPort)
	v.includeMinimal = false
	return v
}

// Latency implements Algorithm, delegating to the wrapped minimal
// algorithm's latency.
func (v *Valiant) Latency() int64 { return v.minimal.Latency() }

// ProcessRequest implements Algorithm: with no non-minimal candidates it
// returns the minimal algorithm's response unchanged; otherwise the
// non-minimal candidates are ranked by weight and the single best-weighted
// one is appended to the minimal candidates (or returned alone, for
// NewValiantNonMinimalOnly), with AllMinimal false.
func (v *Valiant) ProcessRequest(flit *flow.Flit) Response {
	minResp := v.minimal.ProcessRequest(flit)
	nonMinimal := v.nonMinimalPorts(flit)
	if len(nonMinimal) == 0 {
		return minResp
	}

	best := nonMinimal[0]
	bestWeight := v.weight(best, v.congestion, v.inPort, flit.VC)
	for _, c := range nonMinimal[1:] {
		w := v.weight(c, v.congestion, v.inPort, flit.VC)
		if w > bestWeight {
			best = c
			bestWeight = w
		}
	}

	if !v.includeMinimal {
		return Response{Candidates: []Candidate{best}, AllMinimal: false}
	}

	candidates := append(append([]Candidate{}, minResp.Candidates...), best)
	return Response{Candidates: candidates, AllMinimal: false}
}
