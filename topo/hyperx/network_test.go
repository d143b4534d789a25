package hyperx

import (
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
	return func(name string, address []int, numPorts int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) RouterLike {
		numVCs := len(clientArbiters) / numPorts
		return router.NewRouter(router.Config{
			Name:                   name,
			NumPorts:               numPorts,
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

func TestBuildNetwork_SingleDimensionDelivers(t *testing.T) {
	sched := engine.NewScheduler()
	coreClock := engine.NewClockDomain(1)
	chanClock := engine.NewClockDomain(1)

	const concentration = 1
	widths := []int{3}
	numIfaces := concentration * totalRouters(widths)
	recvs := make([]*recordingReceiver, numIfaces)
	for i := range recvs {
		recvs[i] = &recordingReceiver{}
	}

	cfg := NetworkConfig{
		Concentration:    concentration,
		DimensionWidths:  widths,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
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
	require.Len(t, net.Routers, 3)
	require.Len(t, net.Interfaces, 3)

	net.Start()

	// terminal 0 (router 0) -> terminal 2 (router 2): one hop within the
	// single dimension.
	dest := IDToAddress([]int{concentration, 3}, 2)
	msg := net.Interfaces[0].SendMessage(dest, 0, flow.NewKey(0, 0, 0), nil, 1)
	sched.Run()

	require.Len(t, recvs[2].received, 1)
	assert.Same(t, msg, recvs[2].received[0])
}

func TestBuildNetwork_TwoDimensionsDelivers(t *testing.T) {
	sched := engine.NewScheduler()
	coreClock := engine.NewClockDomain(1)
	chanClock := engine.NewClockDomain(1)

	const concentration = 1
	widths := []int{2, 2}
	numIfaces := concentration * totalRouters(widths)
	recvs := make([]*recordingReceiver, numIfaces)
	for i := range recvs {
		recvs[i] = &recordingReceiver{}
	}

	cfg := NetworkConfig{
		Concentration:    concentration,
		DimensionWidths:  widths,
		Scheduler:        sched,
		CoreClock:        coreClock,
		ChannelClock:     chanClock,
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
	require.Len(t, net.Routers, 4)
	require.Len(t, net.Interfaces, 4)

	net.Start()

	// router 0 is at address [0,0]; router 3 is at [1,1], differing in both
	// dimensions, so this exercises two sequential one-hop corrections.
	dest := IDToAddress([]int{concentration, 2, 2}, 3)
	msg := net.Interfaces[0].SendMessage(dest, 0, flow.NewKey(0, 0, 0), nil, 1)
	sched.Run()

	require.Len(t, recvs[3].received, 1)
	assert.Same(t, msg, recvs[3].received[0])
}
