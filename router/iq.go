package router

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/alloc"
	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

const tagTick engine.Tag = 100

// Router is the input-queued (IQ) router datapath (spec §4.5): per-port
// per-VC input buffers driven by a VC FSM, a routing algorithm request per
// head flit, a Separable Allocator for VC allocation, a second Separable
// Allocator for switch allocation, and credit-gated traversal onto output
// channels.
//
// Grounded on the per-cycle pipeline described in spec §4.5 and on the
// Separable Allocator built in package alloc; the VC/switch allocator
// wiring pattern (two independently configured Separable instances sharing
// one router) mirrors how original_source's Router subclasses hold one
// vcAllocator and one swAllocator (see the base Router in
// original_source/src/router/Router.cc).
type Router struct {
	name     string
	numPorts int
	numVCs   int

	scheduler *engine.Scheduler
	clock     engine.ClockDomain

	units [][]*vcUnit // [port][vc]

	algorithm  routing.Algorithm
	requester  *routing.Requester
	reduction  routing.Reduction
	congestion routing.CongestionLookup

	vcAlloc     *alloc.Separable
	vcSelectors []*alloc.RoundRobinArbiter // per-port selector among ready VCs for switch alloc
	switchAlloc *alloc.Separable
	switchPick  []int // per-port: vc index picked this tick by vcSelectors, or -1

	outputChannels []*flow.Channel
	outputCredits  []*flow.CreditTable
	ownerOfOutVC   [][]*vcUnit // [outPort][outVC]

	upstreamCredit []flow.CreditWatcher // per input port: where to return freed input-buffer credit

	// emit delivers a flit that won switch allocation. The IQ variant
	// decrements the output credit and sends directly to the output
	// channel in the same cycle; the IOQ variant overrides this to enqueue
	// onto a per-output queue instead, deferring the credit decrement to
	// the queue's drain (spec §4.6: "credit accounting toward downstream is
	// driven by the output-queue occupancy, not the crossbar decision").
	emit func(unit *vcUnit, flit *flow.Flit)

	// self is the receiver that should be scheduled for this router's tick
	// events: the Router itself for IQ, or the wrapping IOQRouter for IOQ,
	// so the drain step runs as part of every tick (embedding gives no
	// virtual dispatch in Go, so this is set explicitly by NewIOQRouter).
	self engine.Receiver

	started bool
}

// Config bundles the construction parameters for a Router.
type Config struct {
	Name      string
	NumPorts  int
	NumVCs    int
	Scheduler *engine.Scheduler
	Clock     engine.ClockDomain
	Algorithm routing.Algorithm
	Reduction routing.Reduction
	// Congestion feeds the reduction policy's congestion lookups. If nil, the
	// router falls back to its own output-credit occupancy
	// (flow.CreditOccupancySource over outputCredits), so reductions that
	// need congestion always have a real reading to work with.
	Congestion routing.CongestionLookup

	VCClientArbiters   []alloc.Arbiter // len numPorts*numVCs
	VCResourceArbiters []alloc.Arbiter // len numPorts*numVCs
	VCIterations       int
	VCSlipLatch        bool

	SwitchClientArbiters   []alloc.Arbiter // len numPorts
	SwitchResourceArbiters []alloc.Arbiter // len numPorts
	SwitchIterations       int
	SwitchSlipLatch        bool
}

// NewRouter builds an IQ router from cfg. Output channels, output credit
// tables, and upstream credit targets must be wired with SetOutputChannel /
// InitOutputCredits / SetUpstreamCredit before the router starts ticking.
func NewRouter(cfg Config) *Router {
	if cfg.NumPorts <= 0 || cfg.NumVCs <= 0 {
		panic("router: numPorts and numVCs must be > 0")
	}

	r := &Router{
		name:       cfg.Name,
		numPorts:   cfg.NumPorts,
		numVCs:     cfg.NumVCs,
		scheduler:  cfg.Scheduler,
		clock:      cfg.Clock,
		algorithm:  cfg.Algorithm,
		reduction:  cfg.Reduction,
		congestion: cfg.Congestion,
	}

	r.units = make([][]*vcUnit, cfg.NumPorts)
	r.outputChannels = make([]*flow.Channel, cfg.NumPorts)
	r.outputCredits = make([]*flow.CreditTable, cfg.NumPorts)
	r.ownerOfOutVC = make([][]*vcUnit, cfg.NumPorts)
	r.upstreamCredit = make([]flow.CreditWatcher, cfg.NumPorts)
	r.vcSelectors = make([]*alloc.RoundRobinArbiter, cfg.NumPorts)
	r.switchPick = make([]int, cfg.NumPorts)
	for p := 0; p < cfg.NumPorts; p++ {
		r.units[p] = make([]*vcUnit, cfg.NumVCs)
		for v := 0; v < cfg.NumVCs; v++ {
			r.units[p][v] = newVCUnit(p, v)
		}
		r.outputCredits[p] = flow.NewCreditTable(cfg.NumVCs)
		r.ownerOfOutVC[p] = make([]*vcUnit, cfg.NumVCs)
		r.vcSelectors[p] = alloc.NewRoundRobinArbiterAt(cfg.NumVCs, 0)
		r.switchPick[p] = alloc.NoWinner
	}

	r.requester = routing.NewRequester(cfg.Scheduler, cfg.Algorithm)

	numVCClients := cfg.NumPorts * cfg.NumVCs
	vcMatrix := alloc.NewMatrix(numVCClients, numVCClients)
	r.vcAlloc = alloc.NewSeparable(vcMatrix, cfg.VCClientArbiters, cfg.VCResourceArbiters, cfg.VCIterations, cfg.VCSlipLatch)

	swMatrix := alloc.NewMatrix(cfg.NumPorts, cfg.NumPorts)
	r.switchAlloc = alloc.NewSeparable(swMatrix, cfg.SwitchClientArbiters, cfg.SwitchResourceArbiters, cfg.SwitchIterations, cfg.SwitchSlipLatch)

	r.emit = func(unit *vcUnit, flit *flow.Flit) {
		r.outputCredits[unit.outPort].DecrementCredit(unit.outVC)
		unit.pendingOutputCredits++
		r.outputChannels[unit.outPort].SetNextFlit(r.scheduler.Now(), flit)
	}
	r.self = r

	if r.congestion == nil {
		r.congestion = flow.NewCongestionStatus(flow.NewCreditOccupancySource(r.outputCredits), 0).Status
	}

	return r
}

// SetOutputChannel wires port's output channel.
func (r *Router) SetOutputChannel(port int, ch *flow.Channel) { r.outputChannels[port] = ch }

// InitOutputCredits sets the downstream credit budget this router tracks
// for (port, vc).
func (r *Router) InitOutputCredits(port, vc int, max uint32) {
	r.outputCredits[port].InitCredits(vc, max)
}

// SetUpstreamCredit wires the CreditWatcher that should be notified (with
// whatever deferral the caller wraps it in) when this router frees an
// input-buffer slot on (port, vc), returning a credit upstream.
func (r *Router) SetUpstreamCredit(port int, watcher flow.CreditWatcher) {
	r.upstreamCredit[port] = watcher
}

// OutputCreditWatcher exposes this router's output-side credit table for
// port as a CreditWatcher, so a downstream neighbor can return credits into
// it (typically wrapped in a flow.DeferredCreditWatcher by the caller, for
// the epsilon+1 same-cycle ordering required by spec §4.3/§5).
func (r *Router) OutputCreditWatcher(port int) flow.CreditWatcher {
	return &routerOutputCredit{router: r, port: port}
}

// InputSink returns a flow.ChannelSink that delivers arriving flits to this
// router's input port.
func (r *Router) InputSink(port int) flow.ChannelSink {
	return &inputAdapter{router: r, port: port}
}

// Start schedules the router's first per-cycle tick.
func (r *Router) Start() {
	if r.started {
		return
	}
	r.started = true
	r.scheduleNextTick()
}

func (r *Router) scheduleNextTick() {
	now := r.scheduler.Now()
	next := r.clock.NextBoundary(now, 1)
	r.scheduler.Schedule(next, 0, r.self, nil, tagTick)
}

// ProcessEvent implements engine.Receiver for the router's tick events.
func (r *Router) ProcessEvent(payload any, tag engine.Tag) {
	if tag != tagTick {
		panic(fmt.Sprintf("router %s: unexpected event tag %d", r.name, tag))
	}
	r.tick()
	r.scheduleNextTick()
}

type inputAdapter struct {
	router *Router
	port   int
}

func (a *inputAdapter) ReceiveFlit(flit *flow.Flit) { a.router.receiveFlit(a.port, flit) }

// receiveFlit implements step 1 of the per-cycle pipeline (spec §4.5): a
// head flit arriving at an IDLE VC triggers ROUTING and submits a routing
// request; any flit is enqueued in its VC's FIFO buffer.
func (r *Router) receiveFlit(port int, flit *flow.Flit) {
	unit := r.units[port][flit.VC]
	if flit.Head {
		if unit.state != VCIdle {
			panic(fmt.Sprintf("router %s: head flit arrived at port %d vc %d in state %s", r.name, port, flit.VC, unit.state))
		}
		unit.state = VCRouting
		unit.queue = append(unit.queue, flit)
		r.requester.Request(&routingClient{router: r, unit: unit}, flit)
		return
	}
	if unit.state == VCIdle {
		panic(fmt.Sprintf("router %s: body/tail flit arrived at idle port %d vc %d", r.name, port, flit.VC))
	}
	unit.queue = append(unit.queue, flit)
}

// routingClient adapts one vcUnit to routing.Client.
type routingClient struct {
	router *Router
	unit   *vcUnit
}

// RoutingResponse implements routing.Client: ROUTING -> WAITING_VC (spec
// §4.5), applying the configured reduction policy if any.
func (c *routingClient) RoutingResponse(flit *flow.Flit, resp *routing.Response) {
	r := c.router
	final := *resp
	if r.reduction != nil {
		minimal := make([]bool, len(resp.Candidates))
		for i := range minimal {
			minimal[i] = resp.AllMinimal
		}
		final = r.reduction(resp.Candidates, minimal, r.congestion, c.unit.port, flit.VC)
	}
	c.unit.candidates = final.Candidates
	c.unit.allMinimal = final.AllMinimal
	c.unit.state = VCWaitingVC
}

// tick performs VC allocation, switch allocation, and traversal for one
// core cycle (spec §4.5 steps 2-4).
func (r *Router) tick() {
	r.allocateVCs()
	r.allocateSwitch()
	r.traverse()
}

func (r *Router) clientIndex(port, vc int) int { return port*r.numVCs + vc }

func (r *Router) allocateVCs() {
	m := r.vcAlloc.Matrix()
	for p := 0; p < r.numPorts; p++ {
		for v := 0; v < r.numVCs; v++ {
			client := r.clientIndex(p, v)
			for res := 0; res < r.numVCs*r.numPorts; res++ {
				m.SetRequest(client, res, false)
			}
		}
	}

	for p := 0; p < r.numPorts; p++ {
		for v := 0; v < r.numVCs; v++ {
			unit := r.units[p][v]
			if unit.state != VCWaitingVC {
				continue
			}
			client := r.clientIndex(p, v)
			for _, cand := range unit.candidates {
				resource := r.clientIndex(cand.Port, cand.VC)
				m.SetRequest(client, resource, true)
			}
		}
	}

	r.vcAlloc.Allocate()

	for p := 0; p < r.numPorts; p++ {
		for v := 0; v < r.numVCs; v++ {
			unit := r.units[p][v]
			if unit.state != VCWaitingVC {
				continue
			}
			client := r.clientIndex(p, v)
			for _, cand := range unit.candidates {
				resource := r.clientIndex(cand.Port, cand.VC)
				if m.Grant(client, resource) {
					unit.outPort = cand.Port
					unit.outVC = cand.VC
					unit.state = VCActive
					unit.pendingOutputCredits = 0
					unit.tailSent = false
					r.ownerOfOutVC[cand.Port][cand.VC] = unit
					break
				}
			}
		}
	}
}

func (r *Router) allocateSwitch() {
	m := r.switchAlloc.Matrix()
	for p := 0; p < r.numPorts; p++ {
		for q := 0; q < r.numPorts; q++ {
			m.SetRequest(p, q, false)
		}
		r.switchPick[p] = alloc.NoWinner
	}

	for p := 0; p < r.numPorts; p++ {
		ready := make([]bool, r.numVCs)
		for v := 0; v < r.numVCs; v++ {
			unit := r.units[p][v]
			if unit.state != VCActive || len(unit.queue) == 0 {
				continue
			}
			if r.outputCredits[unit.outPort].Count(unit.outVC) == 0 {
				continue
			}
			ready[v] = true
		}
		winner := r.vcSelectors[p].Arbitrate(ready)
		if winner == alloc.NoWinner {
			continue
		}
		r.vcSelectors[p].Latch()
		r.switchPick[p] = winner
		outPort := r.units[p][winner].outPort
		m.SetRequest(p, outPort, true)
	}

	r.switchAlloc.Allocate()
}

func (r *Router) traverse() {
	m := r.switchAlloc.Matrix()

	for p := 0; p < r.numPorts; p++ {
		v := r.switchPick[p]
		if v == alloc.NoWinner {
			continue
		}
		unit := r.units[p][v]
		if !m.Grant(p, unit.outPort) {
			continue
		}

		flit := unit.queue[0]
		unit.queue = unit.queue[1:]

		if r.upstreamCredit[p] != nil {
			r.upstreamCredit[p].IncrementCredit(v)
		}

		flit.VC = unit.outVC
		r.emit(unit, flit)

		if flit.Tail {
			unit.state = VCTailSeen
			unit.tailSent = true
		}
	}
}

// onOutputCreditReturned fires when a previously sent flit's output credit
// comes back. Once every flit sent since the VC's last allocation has been
// acknowledged and the tail has been sent, the owning unit transitions
// TAIL_SEEN -> IDLE and releases the output VC (spec §4.5).
func (r *Router) onOutputCreditReturned(port, vc int) {
	unit := r.ownerOfOutVC[port][vc]
	if unit == nil {
		return
	}
	unit.pendingOutputCredits--
	if unit.pendingOutputCredits <= 0 && unit.tailSent {
		r.ownerOfOutVC[port][vc] = nil
		unit.reset()
	}
}

type routerOutputCredit struct {
	router *Router
	port   int
}

func (w *routerOutputCredit) InitCredits(vc int, max uint32) {
	w.router.outputCredits[w.port].InitCredits(vc, max)
}

func (w *routerOutputCredit) DecrementCredit(vc int) {
	w.router.outputCredits[w.port].DecrementCredit(vc)
}

func (w *routerOutputCredit) IncrementCredit(vc int) {
	w.router.outputCredits[w.port].IncrementCredit(vc)
	w.router.onOutputCreditReturned(w.port, vc)
}
