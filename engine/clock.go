package engine

import "fmt"

// ClockDomain maps a logical clock (the channel clock or the core clock, per
// spec §6's channel_cycle_time/core_cycle_time) to its cycle period and
// computes "next cycle >= now" boundaries used to align scheduled events to
// clock ticks.
//
// Grounded on original_source/src/event/Simulator.cc's cycleTime/cycle/
// futureCycle trio.
type ClockDomain struct {
	Period uint64
}

// NewClockDomain constructs a clock domain with the given strictly-positive
// cycle period.
func NewClockDomain(period uint64) ClockDomain {
	if period == 0 {
		panic("engine: clock domain period must be > 0")
	}
	return ClockDomain{Period: period}
}

// Cycle returns the cycle index containing absolute time t.
func (c ClockDomain) Cycle(t int64) int64 {
	return t / int64(c.Period)
}

// NextBoundary returns the absolute time of the boundary `cycles` cycles
// after the cycle containing now. cycles must be > 0.
func (c ClockDomain) NextBoundary(now int64, cycles uint32) int64 {
	if cycles == 0 {
		panic(fmt.Sprintf("engine: NextBoundary requires cycles > 0, got %d", cycles))
	}
	period := int64(c.Period)
	cycle := now / period
	return (cycle + int64(cycles)) * period
}
