package hyperx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/flow"
)

func newTestFlit(dest []int) *flow.Flit {
	msg := flow.NewMessage(0, []int{0}, dest, 0, flow.NewKey(0, 0, 0), nil, 0)
	pkt := flow.NewPacket(msg, 0, 1, 0)
	return flow.NewFlit(pkt, 0, 0)
}

func destAddressFn(flit *flow.Flit) []int { return flit.Packet.Message.Destination }

func TestDimOrderRouting_SameRouterEjectsLocally(t *testing.T) {
	// 2D, widths [4,4], concentration 2; router at [1,1], destination
	// terminal 1 on the same router.
	alg := NewDimOrderRouting(1, []int{1, 1}, []int{4, 4}, []int{1, 1}, 2, 0, 1, destAddressFn)
	flit := newTestFlit([]int{1, 1, 1})

	resp := alg.ProcessRequest(flit)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 1, resp.Candidates[0].Port)
	assert.True(t, resp.AllMinimal)
}

func TestDimOrderRouting_DiffersInFirstDimension(t *testing.T) {
	alg := NewDimOrderRouting(1, []int{1, 1}, []int{4, 4}, []int{1, 1}, 2, 0, 1, destAddressFn)
	flit := newTestFlit([]int{0, 3, 1}) // differs in dim0: 1 -> 3

	resp := alg.ProcessRequest(flit)
	require.Len(t, resp.Candidates, 1)
	// portBase for dim0 == concentration == 2; src=1,dst=3 -> offset=(3-1-1)*1=1
	assert.Equal(t, 3, resp.Candidates[0].Port)
	assert.True(t, resp.AllMinimal)
}

func TestDimOrderRouting_WrapsAround(t *testing.T) {
	alg := NewDimOrderRouting(1, []int{3}, []int{4}, []int{1}, 2, 0, 1, destAddressFn)
	flit := newTestFlit([]int{0, 0}) // src=3, dst=0 -> wraps to 4; offset=(4-3-1)*1=0

	resp := alg.ProcessRequest(flit)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 2, resp.Candidates[0].Port) // portBase == concentration == 2
}
