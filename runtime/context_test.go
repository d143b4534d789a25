package runtime

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_NilOutsideRun(t *testing.T) {
	Teardown()
	assert.Nil(t, Current())
}

func TestContext_InitAndTeardown(t *testing.T) {
	Teardown()
	ctx := &Context{Scheduler: engine.NewScheduler(), RNG: NewPartitionedRNG(1)}
	Init(ctx)
	assert.Same(t, ctx, Current())
	Teardown()
	assert.Nil(t, Current())
}

func TestContext_DoubleInitPanics(t *testing.T) {
	Teardown()
	Init(&Context{Scheduler: engine.NewScheduler(), RNG: NewPartitionedRNG(1)})
	defer Teardown()
	require.Panics(t, func() {
		Init(&Context{Scheduler: engine.NewScheduler(), RNG: NewPartitionedRNG(1)})
	})
}
