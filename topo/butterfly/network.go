// network.go wires routers, inter-stage channels, interfaces, and external
// channels into a complete k-ary butterfly network, giving the core
// (engine/flow/alloc/router/routing/inject) a concrete instance to run
// against end to end.
//
// Grounded directly on original_source/src/network/butterfly/Network.cc's
// constructor: router/channel/interface creation loops and the
// cBaseUnit/nBaseUnit inter-stage wiring arithmetic are carried over
// unchanged, translated from heap-allocated C++ objects with manual
// teardown to Go slices of struct pointers with no explicit destructors.
package butterfly

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/inject"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// NetworkConfig bundles every parameter needed to build a complete
// butterfly network.
type NetworkConfig struct {
	Radix  int // router radix == number of ports per router
	Stages int

	Scheduler    *engine.Scheduler
	CoreClock    engine.ClockDomain
	ChannelClock engine.ClockDomain

	NumVCs           int
	CreditsPerVC     uint32
	ChannelLatency   int64 // cycles, applied uniformly to internal and external channels
	RoutingLatency   int64
	InjectionLatency int64

	VCIterations     int
	VCSlipLatch      bool
	SwitchIterations int
	SwitchSlipLatch  bool

	MaxPacketSize int // flits
	BytesPerFlit  int

	// Receivers, if non-nil, supplies the MessageReceiver each interface
	// delivers reassembled messages to (typically a workload.Terminal or
	// workload.MessageDistributor). May be nil during tests that only check
	// wiring shape.
	Receivers func(interfaceID int) netif.MessageReceiver
}

// Network is a fully wired butterfly network: routers, interfaces, and the
// channels connecting them.
type Network struct {
	Radix      int
	Stages     int
	StageWidth int

	Routers    []*routerNode
	Interfaces []*netif.Interface
	Channels   map[string]*flow.Channel
}

// routerNode pairs a router with the stage it belongs to, since the
// DestinationTagRouting algorithm each router uses is stage-specific.
type routerNode struct {
	Stage  int
	Column int
	Router RouterLike
}

// RouterLike is the subset of router.Router/router.IOQRouter this builder
// depends on; the core has both an IQ and IOQ variant, and the network
// builder is agnostic to which one a caller constructs.
type RouterLike interface {
	SetOutputChannel(port int, ch *flow.Channel)
	InitOutputCredits(port, vc int, max uint32)
	SetUpstreamCredit(port int, watcher flow.CreditWatcher)
	OutputCreditWatcher(port int) flow.CreditWatcher
	InputSink(port int) flow.ChannelSink
	Start()
}

// RouterFactory constructs one router for the network at (stage, column),
// given its address, the stage-bound routing algorithm it must use, and the
// reduction policy to apply. Callers choose between router.NewRouter (IQ)
// and router.NewIOQRouter (IOQ) here.
type RouterFactory func(name string, stage, column int, algorithm routing.Algorithm, reduction routing.Reduction, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) RouterLike

// BuildNetwork constructs a complete butterfly network per cfg, using
// newRouter to construct each router instance.
func BuildNetwork(cfg NetworkConfig, newRouter RouterFactory) *Network {
	if cfg.Radix < 2 {
		panic("butterfly: radix must be >= 2")
	}
	if cfg.Stages < 1 {
		panic("butterfly: stages must be >= 1")
	}
	stageWidth := pow(cfg.Radix, cfg.Stages-1)

	net := &Network{Radix: cfg.Radix, Stages: cfg.Stages, StageWidth: stageWidth}
	net.Routers = make([]*routerNode, cfg.Stages*stageWidth)
	net.Channels = make(map[string]*flow.Channel)

	destAddress := func(flit *flow.Flit) []int { return flit.Packet.Message.Destination }

	for stage := 0; stage < cfg.Stages; stage++ {
		for column := 0; column < stageWidth; column++ {
			routerID := stage*stageWidth + column
			name := fmt.Sprintf("Router_%d-%d", stage, column)

			algorithm := NewDestinationTagRouting(cfg.RoutingLatency, stage, 0, cfg.NumVCs, destAddress)

			numClients := cfg.Radix * cfg.NumVCs
			vcClientArbiters := make([]alloc.Arbiter, numClients)
			vcResourceArbiters := make([]alloc.Arbiter, numClients)
			for i := 0; i < numClients; i++ {
				vcClientArbiters[i] = alloc.NewRoundRobinArbiterAt(numClients, i)
				vcResourceArbiters[i] = alloc.NewRoundRobinArbiterAt(numClients, i)
			}
			switchClientArbiters := make([]alloc.Arbiter, cfg.Radix)
			switchResourceArbiters := make([]alloc.Arbiter, cfg.Radix)
			for i := 0; i < cfg.Radix; i++ {
				switchClientArbiters[i] = alloc.NewRoundRobinArbiterAt(cfg.Radix, i)
				switchResourceArbiters[i] = alloc.NewRoundRobinArbiterAt(cfg.Radix, i)
			}

			r := newRouter(name, stage, column, algorithm, nil, vcClientArbiters, vcResourceArbiters, switchClientArbiters, switchResourceArbiters)
			for port := 0; port < cfg.Radix; port++ {
				for vc := 0; vc < cfg.NumVCs; vc++ {
					r.InitOutputCredits(port, vc, cfg.CreditsPerVC)
				}
			}
			net.Routers[routerID] = &routerNode{Stage: stage, Column: column, Router: r}
		}
	}

	// Inter-stage channels: grounded verbatim on Network.cc's cBaseUnit/
	// nBaseUnit arithmetic.
	for cStage := 0; cStage < cfg.Stages-1; cStage++ {
		cBaseUnit := pow(cfg.Radix, cfg.Stages-1-cStage)
		nStage := cStage + 1
		nBaseUnit := pow(cfg.Radix, cfg.Stages-1-nStage)
		for cColumn := 0; cColumn < stageWidth; cColumn++ {
			sourceID := cStage*stageWidth + cColumn
			sourceRouter := net.Routers[sourceID].Router
			cBaseOffset := (cColumn / cBaseUnit) * cBaseUnit
			cBaseIndex := cColumn % cBaseUnit
			for cOutputPort := 0; cOutputPort < cfg.Radix; cOutputPort++ {
				nColumn := cBaseOffset + (cBaseIndex % nBaseUnit) + cOutputPort*nBaseUnit
				destinationID := nStage*stageWidth + nColumn
				destRouter := net.Routers[destinationID].Router
				nInputPort := cBaseIndex / nBaseUnit

				chname := fmt.Sprintf("Channel_%d-%d-to-%d-%d", cStage, cColumn, nStage, nColumn)
				channel := flow.NewChannel(chname, cfg.Scheduler, cfg.ChannelClock, destRouter.InputSink(nInputPort), cfg.ChannelLatency)
				net.Channels[chname] = channel
				sourceRouter.SetOutputChannel(cOutputPort, channel)
				destRouter.SetUpstreamCredit(nInputPort, flow.NewDeferredCreditWatcher(sourceRouter.OutputCreditWatcher(cOutputPort), cfg.Scheduler, cfg.ChannelLatency))
			}
		}
	}

	// Interfaces and external channels.
	numIfaces := cfg.Radix * stageWidth
	net.Interfaces = make([]*netif.Interface, numIfaces)
	for id := 0; id < numIfaces; id++ {
		address := InterfaceIDToAddress(cfg.Radix, cfg.Stages, id)
		var receiver netif.MessageReceiver
		if cfg.Receivers != nil {
			receiver = cfg.Receivers(id)
		}
		injAlgorithm := inject.NewAnyVC(cfg.InjectionLatency, cfg.NumVCs)
		iface := netif.NewInterface(netif.Config{
			Name:          fmt.Sprintf("Interface_%d", id),
			ID:            id,
			Address:       address,
			Scheduler:     cfg.Scheduler,
			Clock:         cfg.CoreClock,
			NumVCs:        cfg.NumVCs,
			MaxPacketSize: cfg.MaxPacketSize,
			BytesPerFlit:  cfg.BytesPerFlit,
			Injection:     injAlgorithm,
			Receiver:      receiver,
		})
		for vc := 0; vc < cfg.NumVCs; vc++ {
			iface.InitCredits(vc, cfg.CreditsPerVC)
		}
		net.Interfaces[id] = iface

		routerIndex := id / cfg.Radix
		routerPort := id % cfg.Radix
		inputRouterID := 0*stageWidth + routerIndex
		outputRouterID := (cfg.Stages-1)*stageWidth + routerIndex
		inputRouter := net.Routers[inputRouterID].Router
		outputRouter := net.Routers[outputRouterID].Router

		inChanName := fmt.Sprintf("InChannel_%d", id)
		inChannel := flow.NewChannel(inChanName, cfg.Scheduler, cfg.ChannelClock, inputRouter.InputSink(routerPort), cfg.ChannelLatency)
		net.Channels[inChanName] = inChannel
		iface.SetOutputChannel(inChannel)
		inputRouter.SetUpstreamCredit(routerPort, flow.NewDeferredCreditWatcher(iface.UpstreamCreditWatcher(), cfg.Scheduler, cfg.ChannelLatency))

		outChanName := fmt.Sprintf("OutChannel_%d", id)
		outChannel := flow.NewChannel(outChanName, cfg.Scheduler, cfg.ChannelClock, iface, cfg.ChannelLatency)
		net.Channels[outChanName] = outChannel
		outputRouter.SetOutputChannel(routerPort, outChannel)
		for vc := 0; vc < cfg.NumVCs; vc++ {
			outputRouter.InitOutputCredits(routerPort, vc, cfg.CreditsPerVC)
		}
		iface.SetInboundCredit(flow.NewDeferredCreditWatcher(outputRouter.OutputCreditWatcher(routerPort), cfg.Scheduler, cfg.ChannelLatency))
	}

	return net
}

// Start schedules every router's first tick. Interfaces self-start lazily
// on their first queued packet.
func (n *Network) Start() {
	for _, rn := range n.Routers {
		rn.Router.Start()
	}
}
