// network.go wires routers, intra-dimension channels, interfaces, and
// external channels into a complete HyperX network: one router per
// dimension-address combination, every pair of routers sharing a
// dimension's address prefix fully connected within that dimension.
//
// Grounded on original_source/src/network/hyperx/DimOrderRoutingFunction.cc
// for the port-numbering scheme (concentration ports first, then
// per-dimension port blocks in ascending dimension order) and on
// topo/butterfly's and topo/foldedclos's BuildNetwork shape for the
// router/interface/channel wiring pattern.
package hyperx

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/inject"
	"github.com/hpinterconnect/interconnect-sim/netif"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// NetworkConfig bundles every parameter needed to build a complete HyperX
// network.
type NetworkConfig struct {
	Concentration    int
	DimensionWidths  []int
	DimensionWeights []int // parallel links per dimension; defaults to all-1 if nil

	Scheduler    *engine.Scheduler
	CoreClock    engine.ClockDomain
	ChannelClock engine.ClockDomain

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

// Network is a fully wired HyperX network.
type Network struct {
	Concentration    int
	DimensionWidths  []int
	DimensionWeights []int
	NumPorts         int

	Routers    []RouterLike
	Interfaces []*netif.Interface
	Channels   map[string]*flow.Channel
}

// RouterLike is the subset of router.Router/router.IOQRouter this builder
// depends on, matching topo/butterfly's and topo/foldedclos's RouterLike
// shape.
type RouterLike interface {
	SetOutputChannel(port int, ch *flow.Channel)
	InitOutputCredits(port, vc int, max uint32)
	SetUpstreamCredit(port int, watcher flow.CreditWatcher)
	OutputCreditWatcher(port int) flow.CreditWatcher
	InputSink(port int) flow.ChannelSink
	Start()
}

// RouterFactory constructs one router at the given dimension address, with
// its numPorts and the dimension-order routing algorithm it must use.
type RouterFactory func(name string, address []int, numPorts int, algorithm routing.Algorithm, clientArbiters, resourceArbiters []alloc.Arbiter, switchClientArbiters, switchResourceArbiters []alloc.Arbiter) RouterLike

func totalRouters(widths []int) int {
	total := 1
	for _, w := range widths {
		total *= w
	}
	return total
}

func portBaseForDim(concentration int, widths, weights []int, dim int) int {
	base := concentration
	for d := 0; d < dim; d++ {
		base += (widths[d] - 1) * weights[d]
	}
	return base
}

// BuildNetwork constructs a complete HyperX network per cfg.
func BuildNetwork(cfg NetworkConfig, newRouter RouterFactory) *Network {
	dims := len(cfg.DimensionWidths)
	if dims == 0 {
		panic("hyperx: at least one dimension is required")
	}
	if cfg.Concentration <= 0 {
		panic("hyperx: concentration must be > 0")
	}
	weights := cfg.DimensionWeights
	if weights == nil {
		weights = make([]int, dims)
		for d := range weights {
			weights[d] = 1
		}
	}
	if len(weights) != dims {
		panic("hyperx: dimensionWeights must match dimensionWidths length")
	}

	numPorts := cfg.Concentration
	for d := 0; d < dims; d++ {
		numPorts += (cfg.DimensionWidths[d] - 1) * weights[d]
	}

	fullWidths := append([]int{cfg.Concentration}, cfg.DimensionWidths...)
	destAddress := func(flit *flow.Flit) []int { return flit.Packet.Message.Destination }

	numRouters := totalRouters(cfg.DimensionWidths)
	net := &Network{
		Concentration:    cfg.Concentration,
		DimensionWidths:  cfg.DimensionWidths,
		DimensionWeights: weights,
		NumPorts:         numPorts,
		Routers:          make([]RouterLike, numRouters),
		Channels:         make(map[string]*flow.Channel),
	}

	for rid := 0; rid < numRouters; rid++ {
		addr := IDToAddress(cfg.DimensionWidths, rid)
		name := fmt.Sprintf("Router_%v", addr)

		algorithm := routing.Algorithm(NewDimOrderRouting(cfg.RoutingLatency, addr, cfg.DimensionWidths, weights, cfg.Concentration, 0, cfg.NumVCs, destAddress))

		numClients := numPorts * cfg.NumVCs
		vcClientArbiters := make([]alloc.Arbiter, numClients)
		vcResourceArbiters := make([]alloc.Arbiter, numClients)
		for i := 0; i < numClients; i++ {
			vcClientArbiters[i] = alloc.NewRoundRobinArbiterAt(numClients, i)
			vcResourceArbiters[i] = alloc.NewRoundRobinArbiterAt(numClients, i)
		}
		switchClientArbiters := make([]alloc.Arbiter, numPorts)
		switchResourceArbiters := make([]alloc.Arbiter, numPorts)
		for i := 0; i < numPorts; i++ {
			switchClientArbiters[i] = alloc.NewRoundRobinArbiterAt(numPorts, i)
			switchResourceArbiters[i] = alloc.NewRoundRobinArbiterAt(numPorts, i)
		}

		r := newRouter(name, addr, numPorts, algorithm, vcClientArbiters, vcResourceArbiters, switchClientArbiters, switchResourceArbiters)
		for port := 0; port < numPorts; port++ {
			for vc := 0; vc < cfg.NumVCs; vc++ {
				r.InitOutputCredits(port, vc, cfg.CreditsPerVC)
			}
		}
		net.Routers[rid] = r
	}

	// Intra-dimension channels: every pair of routers differing in exactly
	// one dimension is fully connected within that dimension (spec §6's
	// "HyperX: diameter 1 per dimension"), wired once per unordered pair.
	for rid := 0; rid < numRouters; rid++ {
		addr := IDToAddress(cfg.DimensionWidths, rid)
		for dim := 0; dim < dims; dim++ {
			base := portBaseForDim(cfg.Concentration, cfg.DimensionWidths, weights, dim)
			for peer := addr[dim] + 1; peer < cfg.DimensionWidths[dim]; peer++ {
				peerAddr := append([]int{}, addr...)
				peerAddr[dim] = peer
				peerID := AddressToID(cfg.DimensionWidths, peerAddr)

				thisRouter := net.Routers[rid]
				peerRouter := net.Routers[peerID]

				dstFromThis := peer
				offsetThis := (dstFromThis - addr[dim] - 1) * weights[dim]
				dstFromPeer := addr[dim]
				if dstFromPeer < peer {
					dstFromPeer += cfg.DimensionWidths[dim]
				}
				offsetPeer := (dstFromPeer - peer - 1) * weights[dim]

				for w := 0; w < weights[dim]; w++ {
					thisPort := base + offsetThis + w
					peerPort := base + offsetPeer + w

					fwdName := fmt.Sprintf("Channel_%d-%d-dim%d-%d", rid, peerID, dim, w)
					fwd := flow.NewChannel(fwdName, cfg.Scheduler, cfg.ChannelClock, peerRouter.InputSink(peerPort), cfg.ChannelLatency)
					net.Channels[fwdName] = fwd
					thisRouter.SetOutputChannel(thisPort, fwd)
					peerRouter.SetUpstreamCredit(peerPort, flow.NewDeferredCreditWatcher(thisRouter.OutputCreditWatcher(thisPort), cfg.Scheduler, cfg.ChannelLatency))

					revName := fmt.Sprintf("Channel_%d-%d-dim%d-%d", peerID, rid, dim, w)
					rev := flow.NewChannel(revName, cfg.Scheduler, cfg.ChannelClock, thisRouter.InputSink(thisPort), cfg.ChannelLatency)
					net.Channels[revName] = rev
					peerRouter.SetOutputChannel(peerPort, rev)
					thisRouter.SetUpstreamCredit(thisPort, flow.NewDeferredCreditWatcher(peerRouter.OutputCreditWatcher(peerPort), cfg.Scheduler, cfg.ChannelLatency))

					for vc := 0; vc < cfg.NumVCs; vc++ {
						thisRouter.InitOutputCredits(thisPort, vc, cfg.CreditsPerVC)
						peerRouter.InitOutputCredits(peerPort, vc, cfg.CreditsPerVC)
					}
				}
			}
		}
	}

	// Interfaces and external channels, at each router's concentration
	// ports [0, concentration).
	numIfaces := numRouters * cfg.Concentration
	net.Interfaces = make([]*netif.Interface, numIfaces)
	for rid := 0; rid < numRouters; rid++ {
		addr := IDToAddress(cfg.DimensionWidths, rid)
		router := net.Routers[rid]
		for c := 0; c < cfg.Concentration; c++ {
			ifaceAddr := append([]int{c}, addr...)
			id := AddressToID(fullWidths, ifaceAddr)

			var receiver netif.MessageReceiver
			if cfg.Receivers != nil {
				receiver = cfg.Receivers(id)
			}
			injAlgorithm := inject.NewAnyVC(cfg.InjectionLatency, cfg.NumVCs)
			iface := netif.NewInterface(netif.Config{
				Name:          fmt.Sprintf("Interface_%d-%d", rid, c),
				ID:            id,
				Address:       ifaceAddr,
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

			inChanName := fmt.Sprintf("InChannel_%d-%d", rid, c)
			inChannel := flow.NewChannel(inChanName, cfg.Scheduler, cfg.ChannelClock, router.InputSink(c), cfg.ChannelLatency)
			net.Channels[inChanName] = inChannel
			iface.SetOutputChannel(inChannel)
			router.SetUpstreamCredit(c, flow.NewDeferredCreditWatcher(iface.UpstreamCreditWatcher(), cfg.Scheduler, cfg.ChannelLatency))

			outChanName := fmt.Sprintf("OutChannel_%d-%d", rid, c)
			outChannel := flow.NewChannel(outChanName, cfg.Scheduler, cfg.ChannelClock, iface, cfg.ChannelLatency)
			net.Channels[outChanName] = outChannel
			router.SetOutputChannel(c, outChannel)
			for vc := 0; vc < cfg.NumVCs; vc++ {
				router.InitOutputCredits(c, vc, cfg.CreditsPerVC)
			}
			iface.SetInboundCredit(flow.NewDeferredCreditWatcher(router.OutputCreditWatcher(c), cfg.Scheduler, cfg.ChannelLatency))
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
