package runtime

import "github.com/hpinterconnect/interconnect-sim/engine"

// Context is the non-owning, process-wide handle components reach for when
// they need the current simulation's clock or RNG but do not hold a back-
// pointer to their owner (spec §5/§9: "a global current simulator pointer
// is permitted... this is process-wide state with explicit init/teardown
// and MUST be null outside of a simulation run").
type Context struct {
	Scheduler *engine.Scheduler
	RNG       *PartitionedRNG
}

var current *Context

// Init installs ctx as the current process-wide runtime context. It is a
// programming error to call Init twice without an intervening Teardown.
func Init(ctx *Context) {
	if current != nil {
		panic("runtime: Init called while a context is already active")
	}
	current = ctx
}

// Teardown clears the current context. Safe to call even if no context is
// active.
func Teardown() {
	current = nil
}

// Current returns the active runtime context, or nil outside of a run.
func Current() *Context {
	return current
}
