package inject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/simcfg"
)

func TestRegistry_BuildsAnyVC(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{"latency": 1, "num_vcs": 3}`))
	require.NoError(t, err)

	algo, err := Registry.Build("any_vc", cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(1), algo.Latency())
}

func TestRegistry_BuildsProtocolClass(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{
		"latency": 2,
		"ranges": [
			{"base_vc": 0, "num_vcs": 2},
			{"base_vc": 2, "num_vcs": 1}
		]
	}`))
	require.NoError(t, err)

	algo, err := Registry.Build("protocol_class", cfg)
	require.NoError(t, err)

	msg := flow.NewMessage(0, nil, nil, 1, 0, nil, 0)
	pkt := msg.AddPacket(1, 0)
	resp := algo.ProcessRequest(pkt)
	assert.Equal(t, []int{2}, resp.VCs)
}

func TestRegistry_UnknownInjectionKey(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{}`))
	require.NoError(t, err)

	_, err = Registry.Build("bogus", cfg)
	require.Error(t, err)
}
