// network.go dispatches on the configured topology type, building a
// concrete topo.Network and the matching destination-address picker for
// the workload layer. Grounded on topo/butterfly's, topo/foldedclos's, and
// topo/hyperx's own network_test.go iqRouterFactory helpers: every router
// in this CLI is the IQ datapath (router.NewRouter), since nothing in the
// configuration surface currently selects IOQ.
package cmd

import (
	"fmt"
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/router"
	"github.com/hpinterconnect/interconnect-sim/routing"
	"github.com/hpinterconnect/interconnect-sim/topo/butterfly"
	"github.com/hpinterconnect/interconnect-sim/topo/foldedclos"
	"github.com/hpinterconnect/interconnect-sim/topo/hyperx"
)

// builtNetwork bundles the pieces run.go and validate.go need regardless
// of which topology was selected.
type builtNetwork struct {
	Interfaces  []*netif.Interface
	Channels    map[string]*flow.Channel
	Start       func()
	Destination func(rng *rand.Rand, self int) []int
}

func buildTopology(p *simParams, sched *engine.Scheduler, coreClock, chanClock engine.ClockDomain, topoRNG *rand.Rand, receivers func(id int) netif.MessageReceiver) (*builtNetwork, error) {
	switch p.Topology.Kind {
	case "butterfly":
		return buildButterfly(p, sched, coreClock, chanClock, receivers), nil
	case "foldedclos":
		return buildFoldedClos(p, sched, coreClock, chanClock, topoRNG, receivers), nil
	case "hyperx":
		return buildHyperX(p, sched, coreClock, chanClock, receivers), nil
	default:
		return nil, fmt.Errorf("cmd: unknown topology %q", p.Topology.Kind)
	}
}

func buildButterfly(p *simParams, sched *engine.Scheduler, coreClock, chanClock engine.ClockDomain, receivers func(id int) netif.MessageReceiver) *builtNetwork {
	cfg := butterfly.NetworkConfig{
		Radix:            p.Topology.Radix,
		Stages:           p.Topology.Stages,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
		NumVCs:           p.NumVCs,
		CreditsPerVC:     uint32(p.CreditsPerVC),
		ChannelLatency:   p.ChannelLatency,
		RoutingLatency:   p.RoutingLatency,
		InjectionLatency: p.InjectionLatency,
		VCIterations:     p.VCIterations,
		VCSlipLatch:      true,
		SwitchIterations: p.SwitchIterations,
		SwitchSlipLatch:  true,
		MaxPacketSize:    p.MaxPacketSize,
		BytesPerFlit:     p.BytesPerFlit,
		Receivers:        receivers,
	}

	net := butterfly.BuildNetwork(cfg, func(name string, stage, column int, algorithm routing.Algorithm, reduction routing.Reduction, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) butterfly.RouterLike {
		radix := len(switchClientArbiters)
		numVCs := len(clientArbiters) / radix
		return router.NewRouter(router.Config{
			Name:                   name,
			NumPorts:               radix,
			NumVCs:                 numVCs,
			Scheduler:              sched,
			Clock:                  coreClock,
			Algorithm:              algorithm,
			Reduction:              reduction,
			VCClientArbiters:       clientArbiters,
			VCResourceArbiters:     resourceArbiters,
			VCIterations:           p.VCIterations,
			VCSlipLatch:            true,
			SwitchClientArbiters:   switchClientArbiters,
			SwitchResourceArbiters: switchResourceArbiters,
			SwitchIterations:       p.SwitchIterations,
			SwitchSlipLatch:        true,
		})
	})

	radix, stages := p.Topology.Radix, p.Topology.Stages
	return &builtNetwork{
		Interfaces: net.Interfaces,
		Channels:   net.Channels,
		Start:      net.Start,
		Destination: func(rng *rand.Rand, self int) []int {
			dest := pickOther(rng, self, len(net.Interfaces))
			return butterfly.InterfaceIDToAddress(radix, stages, dest)
		},
	}
}

func buildFoldedClos(p *simParams, sched *engine.Scheduler, coreClock, chanClock engine.ClockDomain, topoRNG *rand.Rand, receivers func(id int) netif.MessageReceiver) *builtNetwork {
	cfg := foldedclos.NetworkConfig{
		Radix:            p.Topology.Radix,
		Levels:           p.Topology.Levels,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
		RNG:              topoRNG,
		NumVCs:           p.NumVCs,
		CreditsPerVC:     uint32(p.CreditsPerVC),
		ChannelLatency:   p.ChannelLatency,
		RoutingLatency:   p.RoutingLatency,
		InjectionLatency: p.InjectionLatency,
		VCIterations:     p.VCIterations,
		VCSlipLatch:      true,
		SwitchIterations: p.SwitchIterations,
		SwitchSlipLatch:  true,
		MaxPacketSize:    p.MaxPacketSize,
		BytesPerFlit:     p.BytesPerFlit,
		Receivers:        receivers,
	}

	net := foldedclos.BuildNetwork(cfg, func(name string, level, column int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) foldedclos.RouterLike {
		radix := len(switchClientArbiters)
		numVCs := len(clientArbiters) / radix
		return router.NewRouter(router.Config{
			Name:                   name,
			NumPorts:               radix,
			NumVCs:                 numVCs,
			Scheduler:              sched,
			Clock:                  coreClock,
			Algorithm:              algorithm,
			VCClientArbiters:       clientArbiters,
			VCResourceArbiters:     resourceArbiters,
			VCIterations:           p.VCIterations,
			VCSlipLatch:            true,
			SwitchClientArbiters:   switchClientArbiters,
			SwitchResourceArbiters: switchResourceArbiters,
			SwitchIterations:       p.SwitchIterations,
			SwitchSlipLatch:        true,
		})
	})

	halfRadix := p.Topology.Radix / 2
	levels := p.Topology.Levels
	return &builtNetwork{
		Interfaces: net.Interfaces,
		Channels:   net.Channels,
		Start:      net.Start,
		Destination: func(rng *rand.Rand, self int) []int {
			dest := pickOther(rng, self, len(net.Interfaces))
			return foldedclos.InterfaceIDToAddress(halfRadix, levels, dest)
		},
	}
}

func buildHyperX(p *simParams, sched *engine.Scheduler, coreClock, chanClock engine.ClockDomain, receivers func(id int) netif.MessageReceiver) *builtNetwork {
	cfg := hyperx.NetworkConfig{
		Concentration:    p.Topology.Concentration,
		DimensionWidths:  p.Topology.DimensionWidths,
		DimensionWeights: p.Topology.DimensionWeights,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
		NumVCs:           p.NumVCs,
		CreditsPerVC:     uint32(p.CreditsPerVC),
		ChannelLatency:   p.ChannelLatency,
		RoutingLatency:   p.RoutingLatency,
		InjectionLatency: p.InjectionLatency,
		VCIterations:     p.VCIterations,
		VCSlipLatch:      true,
		SwitchIterations: p.SwitchIterations,
		SwitchSlipLatch:  true,
		MaxPacketSize:    p.MaxPacketSize,
		BytesPerFlit:     p.BytesPerFlit,
		Receivers:        receivers,
	}

	net := hyperx.BuildNetwork(cfg, func(name string, address []int, numPorts int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) hyperx.RouterLike {
		numVCs := len(clientArbiters) / numPorts
		return router.NewRouter(router.Config{
			Name:                   name,
			NumPorts:               numPorts,
			NumVCs:                 numVCs,
			Scheduler:              sched,
			Clock:                  coreClock,
			Algorithm:              algorithm,
			VCClientArbiters:       clientArbiters,
			VCResourceArbiters:     resourceArbiters,
			VCIterations:           p.VCIterations,
			VCSlipLatch:            true,
			SwitchClientArbiters:   switchClientArbiters,
			SwitchResourceArbiters: switchResourceArbiters,
			SwitchIterations:       p.SwitchIterations,
			SwitchSlipLatch:        true,
		})
	})

	fullWidths := append([]int{p.Topology.Concentration}, p.Topology.DimensionWidths...)
	return &builtNetwork{
		Interfaces: net.Interfaces,
		Channels:   net.Channels,
		Start:      net.Start,
		Destination: func(rng *rand.Rand, self int) []int {
			dest := pickOther(rng, self, len(net.Interfaces))
			return hyperx.IDToAddress(fullWidths, dest)
		},
	}
}

// pickOther draws a uniform index in [0,n) other than self. n must be > 1.
func pickOther(rng *rand.Rand, self, n int) int {
	if n <= 1 {
		panic("cmd: cannot pick a destination distinct from self with fewer than 2 interfaces")
	}
	for {
		dest := rng.Intn(n)
		if dest != self {
			return dest
		}
	}
}
