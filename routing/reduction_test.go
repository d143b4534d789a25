package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedCongestion(values map[[2]int]float64) CongestionLookup {
	return func(inPort, inVC, outPort, outVC int) float64 {
		return values[[2]int{outPort, outVC}]
	}
}

func TestAllMinimalReduction_KeepsOnlyMinimal(t *testing.T) {
	candidates := []Candidate{{Port: 0, VC: 0}, {Port: 1, VC: 0}, {Port: 2, VC: 0}}
	minimal := []bool{true, false, true}

	resp := AllMinimalReduction(candidates, minimal, nil, 0, 0)

	assert.True(t, resp.AllMinimal)
	assert.Equal(t, []Candidate{{Port: 0, VC: 0}, {Port: 2, VC: 0}}, resp.Candidates)
}

func TestAllMinimalReduction_FallsBackWhenNoneMinimal(t *testing.T) {
	candidates := []Candidate{{Port: 0, VC: 0}, {Port: 1, VC: 0}}
	minimal := []bool{false, false}

	resp := AllMinimalReduction(candidates, minimal, nil, 0, 0)

	assert.False(t, resp.AllMinimal)
	assert.Equal(t, candidates, resp.Candidates)
}

func TestLeastCongestedMinimalReduction_PicksLowestCongestion(t *testing.T) {
	candidates := []Candidate{{Port: 0, VC: 0}, {Port: 1, VC: 0}, {Port: 2, VC: 0}}
	minimal := []bool{true, true, true}
	cong := fixedCongestion(map[[2]int]float64{
		{0, 0}: 0.8,
		{1, 0}: 0.1,
		{2, 0}: 0.5,
	})

	resp := LeastCongestedMinimalReduction(candidates, minimal, cong, 0, 0)

	assert.True(t, resp.AllMinimal)
	assert.Equal(t, []Candidate{{Port: 1, VC: 0}}, resp.Candidates)
}
