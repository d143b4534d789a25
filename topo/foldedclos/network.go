// network.go wires routers, inter-level channels, interfaces, and external
// channels into a complete folded-Clos (fat-tree) network, giving the core
// a concrete instance to run the up*/down* McaRouting algorithm against
// end to end.
//
// Grounded directly on
// original_source/src/network/foldedclos/Network.cc's constructor: the
// thisGroupSize/thatGroupSize group arithmetic used to pair up/down
// channels between adjacent levels is carried over unchanged, translated
// from heap-allocated C++ Channel/Router objects into Go slices of struct
// pointers with no explicit destructors.
package foldedclos

import (
	"fmt"
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/inject"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// NetworkConfig bundles every parameter needed to build a complete
// folded-Clos network. Radix must be even (halfRadix = Radix/2 down ports,
// halfRadix up ports per router, except the top level whose up ports are
// unconnected).
type NetworkConfig struct {
	Radix  int
	Levels int

	Scheduler    *engine.Scheduler
	CoreClock    engine.ClockDomain
	ChannelClock engine.ClockDomain
	RNG          *rand.Rand // subsystem-partitioned stream for McaRouting's random upward pick

	NumVCs           int
	CreditsPerVC     uint32
	ChannelLatency   int64
	RoutingLatency   int64
	InjectionLatency int64

	VCIterations     int
	VCSlipLatch      bool
	SwitchIterations int
	SwitchSlipLatch  bool

	MaxPacketSize int
	BytesPerFlit  int

	Receivers func(interfaceID int) netif.MessageReceiver
}

// Network is a fully wired folded-Clos network.
type Network struct {
	Radix      int
	Levels     int
	HalfRadix  int
	RowRouters int

	Routers    []RouterLike
	Interfaces []*netif.Interface
	Channels   map[string]*flow.Channel
}

// RouterLike is the subset of router.Router/router.IOQRouter this builder
// depends on, matching topo/butterfly's RouterLike shape.
type RouterLike interface {
	SetOutputChannel(port int, ch *flow.Channel)
	InitOutputCredits(port, vc int, max uint32)
	SetUpstreamCredit(port int, watcher flow.CreditWatcher)
	OutputCreditWatcher(port int) flow.CreditWatcher
	InputSink(port int) flow.ChannelSink
	Start()
}

// RouterFactory constructs one router at (level, column), given the
// level-bound McaRouting algorithm it must use.
type RouterFactory func(name string, level, column int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) RouterLike

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// BuildNetwork constructs a complete folded-Clos network per cfg.
func BuildNetwork(cfg NetworkConfig, newRouter RouterFactory) *Network {
	if cfg.Radix < 2 || cfg.Radix%2 != 0 {
		panic("foldedclos: radix must be even and >= 2")
	}
	if cfg.Levels < 1 {
		panic("foldedclos: levels must be >= 1")
	}
	halfRadix := cfg.Radix / 2
	rowRouters := pow(halfRadix, cfg.Levels-1)
	apex := NewApexTracker()

	net := &Network{Radix: cfg.Radix, Levels: cfg.Levels, HalfRadix: halfRadix, RowRouters: rowRouters}
	net.Routers = make([]RouterLike, cfg.Levels*rowRouters)
	net.Channels = make(map[string]*flow.Channel)

	destAddress := func(flit *flow.Flit) []int { return flit.Packet.Message.Destination }

	for level := 0; level < cfg.Levels; level++ {
		for col := 0; col < rowRouters; col++ {
			routerID := level*rowRouters + col
			addr := RouterIDToAddress(rowRouters, routerID)
			name := fmt.Sprintf("Router_%d-%d", addr[0], addr[1])

			algorithm := NewMcaRouting(cfg.RoutingLatency, cfg.Radix, cfg.Levels, level, halfRadix, cfg.RNG, apex, 0, cfg.NumVCs, destAddress)

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

			r := newRouter(name, level, col, algorithm, vcClientArbiters, vcResourceArbiters, switchClientArbiters, switchResourceArbiters)
			for port := 0; port < cfg.Radix; port++ {
				for vc := 0; vc < cfg.NumVCs; vc++ {
					r.InitOutputCredits(port, vc, cfg.CreditsPerVC)
				}
			}
			net.Routers[routerID] = r
		}
	}

	// Inter-level channels: grounded on Network.cc's thisGroupSize/
	// thatGroupSize group arithmetic pairing a lower router's up-facing
	// port p to an upper router's down-facing port.
	for level := 0; level < cfg.Levels-1; level++ {
		for col := 0; col < rowRouters; col++ {
			for p := 0; p < halfRadix; p++ {
				thisGroupSize := pow(halfRadix, level)
				thisGroup := col / thisGroupSize
				thisBase := thisGroup * thisGroupSize
				thisOffset := col - thisBase

				thatGroupSize := pow(halfRadix, level+1)
				thatGroup := col / thatGroupSize
				thatBase := thatGroup * thatGroupSize

				thisPort := halfRadix + p
				thatColumn := thatBase + thisOffset + p*thisGroupSize
				thatPort := thisGroup % halfRadix

				thisID := level*rowRouters + col
				thatID := (level+1)*rowRouters + thatColumn
				thisRouter := net.Routers[thisID]
				thatRouter := net.Routers[thatID]

				upName := fmt.Sprintf("UpChannel_%d-%d-%d", level, col, p)
				upChannel := flow.NewChannel(upName, cfg.Scheduler, cfg.ChannelClock, thatRouter.InputSink(thatPort), cfg.ChannelLatency)
				net.Channels[upName] = upChannel
				thisRouter.SetOutputChannel(thisPort, upChannel)
				thatRouter.SetUpstreamCredit(thatPort, flow.NewDeferredCreditWatcher(thisRouter.OutputCreditWatcher(thisPort), cfg.Scheduler, cfg.ChannelLatency))

				downName := fmt.Sprintf("DownChannel_%d-%d-%d", level, col, p)
				downChannel := flow.NewChannel(downName, cfg.Scheduler, cfg.ChannelClock, thisRouter.InputSink(thisPort), cfg.ChannelLatency)
				net.Channels[downName] = downChannel
				thatRouter.SetOutputChannel(thatPort, downChannel)
				thisRouter.SetUpstreamCredit(thisPort, flow.NewDeferredCreditWatcher(thatRouter.OutputCreditWatcher(thatPort), cfg.Scheduler, cfg.ChannelLatency))

				for vc := 0; vc < cfg.NumVCs; vc++ {
					thisRouter.InitOutputCredits(thisPort, vc, cfg.CreditsPerVC)
					thatRouter.InitOutputCredits(thatPort, vc, cfg.CreditsPerVC)
				}
			}
		}
	}

	// Interfaces and external channels, at level 0's down-facing ports.
	numIfaces := rowRouters * halfRadix
	net.Interfaces = make([]*netif.Interface, numIfaces)
	for col := 0; col < rowRouters; col++ {
		for p := 0; p < halfRadix; p++ {
			id := col*halfRadix + p
			address := InterfaceIDToAddress(halfRadix, cfg.Levels, id)
			var receiver netif.MessageReceiver
			if cfg.Receivers != nil {
				receiver = cfg.Receivers(id)
			}
			injAlgorithm := inject.NewAnyVC(cfg.InjectionLatency, cfg.NumVCs)
			iface := netif.NewInterface(netif.Config{
				Name:          fmt.Sprintf("Interface_%d-%d", col, p),
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

			routerID := 0*rowRouters + col
			router := net.Routers[routerID]

			inChanName := fmt.Sprintf("InChannel_%d-%d", col, p)
			inChannel := flow.NewChannel(inChanName, cfg.Scheduler, cfg.ChannelClock, router.InputSink(p), cfg.ChannelLatency)
			net.Channels[inChanName] = inChannel
			iface.SetOutputChannel(inChannel)
			router.SetUpstreamCredit(p, flow.NewDeferredCreditWatcher(iface.UpstreamCreditWatcher(), cfg.Scheduler, cfg.ChannelLatency))

			outChanName := fmt.Sprintf("OutChannel_%d-%d", col, p)
			outChannel := flow.NewChannel(outChanName, cfg.Scheduler, cfg.ChannelClock, iface, cfg.ChannelLatency)
			net.Channels[outChanName] = outChannel
			router.SetOutputChannel(p, outChannel)
			for vc := 0; vc < cfg.NumVCs; vc++ {
				router.InitOutputCredits(p, vc, cfg.CreditsPerVC)
			}
			iface.SetInboundCredit(flow.NewDeferredCreditWatcher(router.OutputCreditWatcher(p), cfg.Scheduler, cfg.ChannelLatency))
		}
	}

	return net
}

// Start schedules every router's first tick.
func (n *Network) Start() {
	for _, r := range n.Routers {
		r.Start()
	}
}
