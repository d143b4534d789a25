package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/simcfg"
)

func TestReductionRegistry_BuildsBothBuiltins(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{}`))
	require.NoError(t, err)

	allMin, err := ReductionRegistry.Build("all_minimal", cfg)
	require.NoError(t, err)
	assert.NotNil(t, allMin)

	leastCong, err := ReductionRegistry.Build("least_congested_minimal", cfg)
	require.NoError(t, err)
	assert.NotNil(t, leastCong)
}

func TestReductionRegistry_UnknownKey(t *testing.T) {
	cfg, err := simcfg.Parse([]byte(`{}`))
	require.NoError(t, err)

	_, err = ReductionRegistry.Build("bogus", cfg)
	require.Error(t, err)
}
