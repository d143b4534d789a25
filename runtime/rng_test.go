package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_SameSubsystemReturnsSameInstance(t *testing.T) {
	p := NewPartitionedRNG(42)
	a := p.ForSubsystem("router0")
	b := p.ForSubsystem("router0")
	assert.Same(t, a, b)
}

func TestPartitionedRNG_DifferentSubsystemsDiverge(t *testing.T) {
	p := NewPartitionedRNG(42)
	a := p.ForSubsystem("router0").Int63()
	b := p.ForSubsystem("router1").Int63()
	assert.NotEqual(t, a, b)
}

func TestPartitionedRNG_DeterministicAcrossRuns(t *testing.T) {
	p1 := NewPartitionedRNG(7)
	p2 := NewPartitionedRNG(7)
	assert.Equal(t, p1.ForSubsystem("workload").Int63(), p2.ForSubsystem("workload").Int63())
}

func TestPartitionedRNG_OrderIndependentDerivation(t *testing.T) {
	p1 := NewPartitionedRNG(7)
	first := p1.ForSubsystem("a").Int63()
	_ = p1.ForSubsystem("b")

	p2 := NewPartitionedRNG(7)
	_ = p2.ForSubsystem("b")
	second := p2.ForSubsystem("a").Int63()

	assert.Equal(t, first, second)
}

func TestPartitionedRNG_ForComponent(t *testing.T) {
	p := NewPartitionedRNG(1)
	assert.Same(t, p.ForSubsystem(SubsystemRouting+".router0"), p.ForComponent(SubsystemRouting, "router0"))
}
