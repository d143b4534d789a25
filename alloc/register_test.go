package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/simcfg"
)

func TestRegistry_BuildsRoundRobinArbiter(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{"num_inputs": 4}`))
	require.NoError(t, err)

	arb, err := Registry.Build("round_robin", cfg)
	require.NoError(t, err)
	require.NotNil(t, arb)

	winner := arb.Arbitrate([]bool{false, true, true, false})
	assert.Equal(t, 1, winner)
}

func TestRegistry_UnknownArbiterKey(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{}`))
	require.NoError(t, err)

	_, err = Registry.Build("weighted", cfg)
	require.Error(t, err)
}
