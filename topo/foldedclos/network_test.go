package foldedclos

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/router"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

type recordingReceiver struct {
	received []*flow.Message
}

func (r *recordingReceiver) ReceiveMessage(msg *flow.Message) {
	r.received = append(r.received, msg)
}

func iqRouterFactory(sched *engine.Scheduler, clock engine.ClockDomain) RouterFactory {
	return func(name string, level, column int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) RouterLike {
		radix := len(switchClientArbiters)
		numVCs := len(clientArbiters) / radix
		return router.NewRouter(router.Config{
			Name:                   name,
			NumPorts:               radix,
			NumVCs:                 numVCs,
			Scheduler:              sched,
			Clock:                  clock,
			Algorithm:              algorithm,
			VCClientArbiters:       clientArbiters,
			VCResourceArbiters:     resourceArbiters,
			VCIterations:           1,
			VCSlipLatch:            true,
			SwitchClientArbiters:   switchClientArbiters,
			SwitchResourceArbiters: switchResourceArbiters,
			SwitchIterations:       1,
			SwitchSlipLatch:        true,
		})
	}
}

func TestBuildNetwork_SingleLevelDirectDelivery(t *testing.T) {
	sched := engine.NewScheduler()
	coreClock := engine.NewClockDomain(1)
	chanClock := engine.NewClockDomain(1)

	recvs := make([]*recordingReceiver, 2)
	for i := range recvs {
		recvs[i] = &recordingReceiver{}
	}

	cfg := NetworkConfig{
		Radix:            4,
		Levels:           1,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
		RNG:              rand.New(rand.NewSource(1)),
		NumVCs:           1,
		CreditsPerVC:     8,
		ChannelLatency:   1,
		RoutingLatency:   1,
		InjectionLatency: 1,
		VCIterations:     1,
		SwitchIterations: 1,
		MaxPacketSize:    1,
		BytesPerFlit:     1,
		Receivers: func(id int) netif.MessageReceiver {
			return recvs[id]
		},
	}

	net := BuildNetwork(cfg, iqRouterFactory(sched, coreClock))
	require.Len(t, net.Routers, 1)
	require.Len(t, net.Interfaces, 2)

	net.Start()
	msg := net.Interfaces[0].SendMessage([]int{1}, 0, flow.NewKey(0, 0, 0), nil, 1)
	sched.Run()

	require.Len(t, recvs[1].received, 1)
	assert.Same(t, msg, recvs[1].received[0])
}

func TestBuildNetwork_TwoLevelDelivers(t *testing.T) {
	sched := engine.NewScheduler()
	coreClock := engine.NewClockDomain(1)
	chanClock := engine.NewClockDomain(1)

	const radix, levels = 4, 2
	halfRadix := radix / 2
	numIfaces := pow(halfRadix, levels-1) * halfRadix
	recvs := make([]*recordingReceiver, numIfaces)
	for i := range recvs {
		recvs[i] = &recordingReceiver{}
	}

	cfg := NetworkConfig{
		Radix:            radix,
		Levels:           levels,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
		RNG:              rand.New(rand.NewSource(1)),
		NumVCs:           1,
		CreditsPerVC:     8,
		ChannelLatency:   1,
		RoutingLatency:   1,
		InjectionLatency: 1,
		VCIterations:     1,
		SwitchIterations: 1,
		MaxPacketSize:    1,
		BytesPerFlit:     1,
		Receivers: func(id int) netif.MessageReceiver {
			return recvs[id]
		},
	}

	net := BuildNetwork(cfg, iqRouterFactory(sched, coreClock))
	require.Len(t, net.Routers, levels*pow(halfRadix, levels-1))
	require.Len(t, net.Interfaces, numIfaces)

	net.Start()

	// interface 0 and interface 3 sit under different level-0 pods, so this
	// exercises a full climb through the spine and back down.
	dest := InterfaceIDToAddress(halfRadix, levels, 3)
	msg := net.Interfaces[0].SendMessage(dest, 0, flow.NewKey(0, 0, 0), nil, 1)
	sched.Run()

	require.Len(t, recvs[3].received, 1)
	assert.Same(t, msg, recvs[3].received[0])
}
