package foldedclos

import (
	"math/rand"
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

func TestMcaRouting_ClimbsBelowTop(t *testing.T) {
	apex := NewApexTracker()
	rng := rand.New(rand.NewSource(7))
	// level 0 of a 2-level, radix-4 (halfRadix=2) tree: not yet at the top,
	// so it must pick one of the upper-half (up-facing) ports.
	alg := NewMcaRouting(1, 4, 2, 0, 2, rng, apex, 0, 1, destAddressFn)
	flit := newTestFlit([]int{1, 0})

	resp := alg.ProcessRequest(flit)
	require.Len(t, resp.Candidates, 1)
	assert.GreaterOrEqual(t, resp.Candidates[0].Port, 2)
	assert.False(t, resp.AllMinimal)
	assert.False(t, apex.hasReachedApex(flit.Packet))
}

func TestMcaRouting_DescendsAtTop(t *testing.T) {
	apex := NewApexTracker()
	rng := rand.New(rand.NewSource(7))
	alg := NewMcaRouting(1, 4, 2, 1, 2, rng, apex, 0, 1, destAddressFn)
	flit := newTestFlit([]int{1, 1})

	resp := alg.ProcessRequest(flit)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 1, resp.Candidates[0].Port) // dest[level] == dest[1]
	assert.True(t, apex.hasReachedApex(flit.Packet))
}

func TestMcaRouting_DescendsOnceApexReached(t *testing.T) {
	apex := NewApexTracker()
	rng := rand.New(rand.NewSource(7))
	flit := newTestFlit([]int{1, 1})
	apex.markApex(flit.Packet)

	// level 0, but the packet already turned downward at an ancestor, so
	// this router delivers locally and forgets the packet.
	alg := NewMcaRouting(1, 4, 2, 0, 2, rng, apex, 0, 1, destAddressFn)
	resp := alg.ProcessRequest(flit)

	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, 1, resp.Candidates[0].Port)
	assert.False(t, apex.hasReachedApex(flit.Packet))
}
