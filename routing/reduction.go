package routing

import "github.com/hpinterconnect/interconnect-sim/flow"

// CongestionLookup supplies a [0,1] congestion reading for a candidate
// output (port, VC), given the flit's input (port, VC). Implementations
// typically wrap flow.CongestionStatus.
type CongestionLookup func(inPort, inVC, outPort, outVC int) float64

// Reduction collapses a candidate set down to the subset preferred by a
// given policy (spec §4.8). minimal reports, for each candidate, whether it
// is a minimal-hop choice; reductions that only ever keep minimal-hop
// candidates set Response.AllMinimal accordingly.
type Reduction func(candidates []Candidate, minimal []bool, congestion CongestionLookup, inPort, inVC int) Response

// AllMinimalReduction keeps every minimal-hop candidate and discards all
// non-minimal ones. If no candidate is minimal (should not occur for a
// reachable destination), it falls back to the full candidate set.
func AllMinimalReduction(candidates []Candidate, minimal []bool, congestion CongestionLookup, inPort, inVC int) Response {
	kept := make([]Candidate, 0, len(candidates))
	for i, c := range candidates {
		if minimal[i] {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return Response{Candidates: candidates, AllMinimal: false}
	}
	return Response{Candidates: kept, AllMinimal: true}
}

// LeastCongestedMinimalReduction keeps the single least-congested candidate
// among the minimal-hop candidates (falling back to the full set, as
// AllMinimalReduction does, if none are minimal). Ties are broken by
// candidate order using flow.CongestionEqual's tolerance.
func LeastCongestedMinimalReduction(candidates []Candidate, minimal []bool, congestion CongestionLookup, inPort, inVC int) Response {
	minimalSet := AllMinimalReduction(candidates, minimal, congestion, inPort, inVC)
	if !minimalSet.AllMinimal {
		return minimalSet
	}

	best := minimalSet.Candidates[0]
	bestCong := congestion(inPort, inVC, best.Port, best.VC)
	for _, c := range minimalSet.Candidates[1:] {
		cong := congestion(inPort, inVC, c.Port, c.VC)
		if flow.CongestionLessThan(cong, bestCong) {
			best = c
			bestCong = cong
		}
	}
	return Response{Candidates: []Candidate{best}, AllMinimal: true}
}
