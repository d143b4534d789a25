package routing

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValiant_NoNonMinimalCandidatesReturnsMinimalUnchanged(t *testing.T) {
	minimal := fixedAlgorithm{latency: 3, candidates: []Candidate{{Port: 1, VC: 0}}}
	noNonMinimal := func(flit *flow.Flit) []Candidate { return nil }
	v := NewValiant(minimal, noNonMinimal, DefaultNonMinimalWeight(0), nil, 0)

	resp := v.ProcessRequest(newTestFlit())

	assert.Equal(t, []Candidate{{Port: 1, VC: 0}}, resp.Candidates)
	assert.True(t, resp.AllMinimal)
	assert.Equal(t, int64(3), v.Latency())
}

func TestValiant_PicksBestWeightedNonMinimalCandidate(t *testing.T) {
	minimal := fixedAlgorithm{latency: 2, candidates: []Candidate{{Port: 0, VC: 0}}}
	nonMinimal := func(flit *flow.Flit) []Candidate {
		return []Candidate{{Port: 2, VC: 0}, {Port: 3, VC: 0}}
	}
	cong := func(inPort, inVC, outPort, outVC int) float64 {
		if outPort == 3 {
			return 0.1 // lower congestion -> higher (1-cong) weight
		}
		return 0.9
	}
	v := NewValiant(minimal, nonMinimal, DefaultNonMinimalWeight(0), cong, 0)

	resp := v.ProcessRequest(newTestFlit())

	require.Len(t, resp.Candidates, 2)
	assert.Equal(t, Candidate{Port: 0, VC: 0}, resp.Candidates[0])
	assert.Equal(t, Candidate{Port: 3, VC: 0}, resp.Candidates[1])
	assert.False(t, resp.AllMinimal)
}

func TestDefaultNonMinimalWeight_IgnoresMinimalInfoAddsBias(t *testing.T) {
	weight := DefaultNonMinimalWeight(0.25)
	cong := func(inPort, inVC, outPort, outVC int) float64 { return 0.4 }

	w := weight(Candidate{Port: 5, VC: 1}, cong, 0, 0)

	assert.InDelta(t, 0.85, w, 1e-9) // (1 - 0.4) + 0.25
}
