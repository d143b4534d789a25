package flow

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
)

// ChannelSink receives flits delivered by a Channel after its propagation
// latency elapses.
type ChannelSink interface {
	ReceiveFlit(flit *Flit)
}

const tagChannelDeliver engine.Tag = 1

// Channel is a unidirectional link carrying at most one flit per channel
// cycle, with a fixed propagation latency measured in channel-clock cycles
// (spec §4.2/§3). It is FIFO: a flit inserted at cycle t emerges at cycle
// t + latency.
type Channel struct {
	name      string
	scheduler *engine.Scheduler
	clock     engine.ClockDomain
	sink      ChannelSink
	latency   int64 // in channel cycles

	lastSetCycle int64 // last cycle a flit was set on; -1 if none yet

	monitoring   bool
	vcFlitCounts map[int]int64
}

// NewChannel constructs a channel with the given cycle-latency, delivering
// through sched to sink.
func NewChannel(name string, sched *engine.Scheduler, clock engine.ClockDomain, sink ChannelSink, latencyCycles int64) *Channel {
	if latencyCycles <= 0 {
		panic(fmt.Sprintf("flow: channel %s latency must be > 0, got %d", name, latencyCycles))
	}
	return &Channel{
		name:         name,
		scheduler:    sched,
		clock:        clock,
		sink:         sink,
		latency:      latencyCycles,
		lastSetCycle: -1,
		vcFlitCounts: make(map[int]int64),
	}
}

// SetNextFlit schedules flit for delivery to the sink latency cycles after
// the current channel cycle containing `now`. At most one flit may be set
// per cycle.
func (c *Channel) SetNextFlit(now int64, flit *Flit) {
	cycle := c.clock.Cycle(now)
	if cycle == c.lastSetCycle {
		panic(fmt.Sprintf("flow: channel %s: more than one flit set in cycle %d", c.name, cycle))
	}
	c.lastSetCycle = cycle

	deliverTime := c.clock.NextBoundary(now, uint32(c.latency))
	c.scheduler.Schedule(deliverTime, 0, channelDeliverReceiver{c}, flit, tagChannelDeliver)

	if c.monitoring {
		c.vcFlitCounts[flit.VC]++
	}
}

// StartMonitoring enables per-VC flit-count accumulation.
func (c *Channel) StartMonitoring() {
	c.monitoring = true
	c.vcFlitCounts = make(map[int]int64)
}

// EndMonitoring disables accumulation and returns the collected per-VC flit
// counts, keyed by VC index. Call this exactly once per monitoring window;
// the result is meant to be flushed to the channel log.
func (c *Channel) EndMonitoring() map[int]int64 {
	c.monitoring = false
	counts := c.vcFlitCounts
	c.vcFlitCounts = make(map[int]int64)
	return counts
}

// channelDeliverReceiver adapts Channel delivery to engine.Receiver without
// exposing ProcessEvent on Channel itself (Channel is not a general-purpose
// event sink; it only ever delivers one kind of event).
type channelDeliverReceiver struct{ c *Channel }

func (r channelDeliverReceiver) ProcessEvent(payload any, tag engine.Tag) {
	flit := payload.(*Flit)
	r.c.sink.ReceiveFlit(flit)
}
