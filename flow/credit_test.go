package flow

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditTable_InitAndDecrementIncrement(t *testing.T) {
	ct := NewCreditTable(2)
	ct.InitCredits(0, 4)
	assert.Equal(t, uint32(4), ct.Count(0))

	ct.DecrementCredit(0)
	assert.Equal(t, uint32(3), ct.Count(0))

	ct.IncrementCredit(0)
	assert.Equal(t, uint32(4), ct.Count(0))
}

func TestCreditTable_DecrementUnderflowPanics(t *testing.T) {
	ct := NewCreditTable(1)
	ct.InitCredits(0, 0)
	require.Panics(t, func() { ct.DecrementCredit(0) })
}

func TestCreditTable_IncrementOverflowPanics(t *testing.T) {
	ct := NewCreditTable(1)
	ct.InitCredits(0, 1)
	require.Panics(t, func() { ct.IncrementCredit(0) })
}

func TestCreditTable_ConservationAcrossIssueAndReturn(t *testing.T) {
	ct := NewCreditTable(1)
	ct.InitCredits(0, 10)
	inFlight := 0
	for i := 0; i < 6; i++ {
		ct.DecrementCredit(0)
		inFlight++
	}
	for i := 0; i < 3; i++ {
		ct.IncrementCredit(0)
		inFlight--
	}
	// credits-currently-held + flits-in-flight == credits issued at startup
	assert.Equal(t, uint32(10), ct.Count(0)+uint32(inFlight))
}

func TestDeferredCreditWatcher_AppliesAtLatencyMinusOneWithEpsilonPlusOne(t *testing.T) {
	sched := engine.NewScheduler()
	table := NewCreditTable(1)
	table.InitCredits(0, 5)
	watcher := NewDeferredCreditWatcher(table, sched, 3)

	// Simulate: at time 10, epsilon 0, a flit departs (triggering event),
	// then the watcher is asked to decrement a credit in the same handler.
	sched.Schedule(10, 0, engineFuncReceiver(func() {
		watcher.DecrementCredit(0)
		// count must not have changed yet: the effect is deferred
		assert.Equal(t, uint32(5), table.Count(0))
	}), nil, 0)

	sched.Run()
	assert.Equal(t, uint32(4), table.Count(0))
}

type engineFuncReceiver func()

func (f engineFuncReceiver) ProcessEvent(payload any, tag engine.Tag) { f() }
