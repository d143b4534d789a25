package flow

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	received []*Flit
	at       []int64
	sched    *engine.Scheduler
}

func (s *recordingSink) ReceiveFlit(f *Flit) {
	s.received = append(s.received, f)
	s.at = append(s.at, s.sched.Now())
}

func TestChannel_DeliversAfterLatency(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	sink := &recordingSink{sched: sched}
	ch := NewChannel("c0", sched, clock, sink, 5)

	msg := NewMessage(0, nil, nil, 0, NewKey(0, 0, 0), nil, 0)
	pkt := msg.AddPacket(1, 0)
	flit := pkt.Flits[0]

	ch.SetNextFlit(0, flit)
	sched.Run()

	require.Len(t, sink.received, 1)
	assert.Same(t, flit, sink.received[0])
	assert.Equal(t, int64(5), sink.at[0])
}

func TestChannel_FIFOOrdering(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	sink := &recordingSink{sched: sched}
	ch := NewChannel("c0", sched, clock, sink, 2)

	msg := NewMessage(0, nil, nil, 0, NewKey(0, 0, 0), nil, 0)
	pkt := msg.AddPacket(3, 0)

	ch.SetNextFlit(0, pkt.Flits[0])
	ch.SetNextFlit(1, pkt.Flits[1])
	ch.SetNextFlit(2, pkt.Flits[2])
	sched.Run()

	require.Len(t, sink.received, 3)
	assert.Same(t, pkt.Flits[0], sink.received[0])
	assert.Same(t, pkt.Flits[1], sink.received[1])
	assert.Same(t, pkt.Flits[2], sink.received[2])
}

func TestChannel_AtMostOneFlitPerCyclePanics(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	sink := &recordingSink{sched: sched}
	ch := NewChannel("c0", sched, clock, sink, 2)

	msg := NewMessage(0, nil, nil, 0, NewKey(0, 0, 0), nil, 0)
	pkt := msg.AddPacket(2, 0)

	ch.SetNextFlit(0, pkt.Flits[0])
	require.Panics(t, func() { ch.SetNextFlit(0, pkt.Flits[1]) })
}

func TestChannel_MonitoringCountersOnlyMutateWhileEnabled(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	sink := &recordingSink{sched: sched}
	ch := NewChannel("c0", sched, clock, sink, 1)

	msg := NewMessage(0, nil, nil, 0, NewKey(0, 0, 0), nil, 0)
	pkt := msg.AddPacket(2, 0)
	pkt.Flits[0].VC = 3
	pkt.Flits[1].VC = 3

	ch.SetNextFlit(0, pkt.Flits[0]) // monitoring disabled: not counted
	ch.StartMonitoring()
	ch.SetNextFlit(1, pkt.Flits[1])
	counts := ch.EndMonitoring()

	assert.Equal(t, int64(1), counts[3])
}
