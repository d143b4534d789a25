package inject

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packetInClass(class flow.ProtocolClass) *flow.Packet {
	msg := flow.NewMessage(0, nil, nil, class, flow.NewKey(0, 0, 0), nil, 0)
	return msg.AddPacket(1, 0)
}

func TestProtocolClass_OffersOnlyOwnedRange(t *testing.T) {
	algo := NewProtocolClass(1, []ProtocolClassRange{
		{BaseVC: 0, NumVCs: 2},
		{BaseVC: 2, NumVCs: 3},
	})

	resp := algo.ProcessRequest(packetInClass(1))
	assert.Equal(t, []int{2, 3, 4}, resp.VCs)
}

func TestProtocolClass_FirstClassStartsAtZero(t *testing.T) {
	algo := NewProtocolClass(1, []ProtocolClassRange{
		{BaseVC: 0, NumVCs: 2},
		{BaseVC: 2, NumVCs: 3},
	})

	resp := algo.ProcessRequest(packetInClass(0))
	assert.Equal(t, []int{0, 1}, resp.VCs)
}

func TestProtocolClass_UnknownClassPanics(t *testing.T) {
	algo := NewProtocolClass(1, []ProtocolClassRange{{BaseVC: 0, NumVCs: 2}})
	require.Panics(t, func() { algo.ProcessRequest(packetInClass(5)) })
}
