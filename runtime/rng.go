// Package runtime bundles the process-wide state the core needs but does not
// own outright: the current simulation's event scheduler handle and its
// deterministic, subsystem-partitioned RNG. Grounded on
// sim/cluster/rng.go's PartitionedRNG and spec §9's "bundle into an explicit
// runtime context" note.
package runtime

import (
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG hands out a deterministic, isolated *rand.Rand per named
// subsystem, derived from one master seed so a whole run is reproducible
// from a single random_seed (spec §6) regardless of component construction
// order.
//
// Thread-safety: NOT safe for concurrent use, matching the single-threaded
// cooperative model (spec §5).
type PartitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a partitioned RNG seeded from masterSeed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the (lazily created, cached) RNG for the named
// subsystem. The same name always returns the same *rand.Rand instance.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	seed := p.masterSeed ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(seed))
	p.subsystems[name] = rng
	return rng
}

// MasterSeed returns the seed this PartitionedRNG was constructed from.
func (p *PartitionedRNG) MasterSeed() int64 { return p.masterSeed }

// Subsystem name helpers. Per-component subsystems are named
// "<category>.<instance-name>" so every router, channel monitor, routing
// algorithm, and application gets an isolated stream.
const (
	SubsystemWorkload  = "workload"
	SubsystemRouting   = "routing"
	SubsystemInjection = "injection"
	SubsystemArbiter   = "arbiter"
)

// ForComponent returns the RNG for a named instance within a category, e.g.
// ForComponent(SubsystemRouting, "router3") -> isolated stream for router3's
// routing algorithm.
func (p *PartitionedRNG) ForComponent(category, instanceName string) *rand.Rand {
	return p.ForSubsystem(category + "." + instanceName)
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
