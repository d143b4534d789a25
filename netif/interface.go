// Package netif implements the terminal-facing Interface (spec §4.7):
// fragmentation of outgoing messages into packets and flits, the
// injection-algorithm client that selects an injection VC per packet,
// per-VC credit gating toward the first-hop router, and reassembly of
// incoming flits back into delivered messages.
//
// Grounded on original_source/src/interface/Interface.cc's
// packetArrival/packetDeparture metadata hooks and MessageReceiver handoff,
// generalized from the teacher's `any`-protocol-class, single-flit-queue
// sketch into the full fragment/credit-gate/reassemble pipeline spec.md
// §4.7 describes.
package netif

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/inject"
)

// MessageReceiver accepts a fully reassembled message delivered at its
// destination interface.
type MessageReceiver interface {
	ReceiveMessage(msg *flow.Message)
}

const tagInterfaceTick engine.Tag = 200

// Interface is the terminal-facing node at one end of the network: a
// message source (fragmenting messages into packets/flits and injecting
// them VC-by-VC) and a message sink (reassembling arriving flits and
// delivering completed messages).
type Interface struct {
	name    string
	id      int
	address []int

	scheduler *engine.Scheduler
	clock     engine.ClockDomain

	numVCs        int
	maxPacketSize int // flits per packet
	bytesPerFlit  int

	injRequester *inject.Requester

	outputChannel *flow.Channel
	credits       *flow.CreditTable

	inboundCredit flow.CreditWatcher // notified as flits are ejected, returning credit to the last-hop router

	vcQueues [][]*flow.Packet // per-VC FIFO of packets ready to send
	vcCursor []int            // per-VC: flit index within the head packet

	receiver MessageReceiver

	nextMessageID int
	packetsLeft   map[*flow.Message]int // remaining undelivered packets per in-flight message

	started bool
}

// Config bundles Interface construction parameters.
type Config struct {
	Name          string
	ID            int
	Address       []int
	Scheduler     *engine.Scheduler
	Clock         engine.ClockDomain
	NumVCs        int
	MaxPacketSize int // flits
	BytesPerFlit  int
	Injection     inject.Algorithm
	Receiver      MessageReceiver
}

// NewInterface builds an Interface. The output channel toward the first-hop
// router and its credit budget must be wired with SetOutputChannel /
// InitCredits before SendMessage is called.
func NewInterface(cfg Config) *Interface {
	if cfg.NumVCs <= 0 {
		panic("netif: numVCs must be > 0")
	}
	if cfg.MaxPacketSize <= 0 || cfg.BytesPerFlit <= 0 {
		panic("netif: maxPacketSize and bytesPerFlit must be > 0")
	}
	i := &Interface{
		name:          cfg.Name,
		id:            cfg.ID,
		address:       cfg.Address,
		scheduler:     cfg.Scheduler,
		clock:         cfg.Clock,
		numVCs:        cfg.NumVCs,
		maxPacketSize: cfg.MaxPacketSize,
		bytesPerFlit:  cfg.BytesPerFlit,
		credits:       flow.NewCreditTable(cfg.NumVCs),
		vcQueues:      make([][]*flow.Packet, cfg.NumVCs),
		vcCursor:      make([]int, cfg.NumVCs),
		receiver:      cfg.Receiver,
		packetsLeft:   make(map[*flow.Message]int),
	}
	i.injRequester = inject.NewRequester(cfg.Scheduler, cfg.Injection)
	return i
}

// SetOutputChannel wires the channel toward this interface's first-hop
// router.
func (i *Interface) SetOutputChannel(ch *flow.Channel) { i.outputChannel = ch }

// InitCredits sets the per-VC credit budget this interface tracks toward
// the first-hop router.
func (i *Interface) InitCredits(vc int, max uint32) { i.credits.InitCredits(vc, max) }

// SetInboundCredit wires the CreditWatcher that should be notified as this
// interface ejects flits arriving from its last-hop router, returning
// credit upstream (spec §8 scenario 1's "ejection latency" is the channel
// latency on this link; ejection itself is instantaneous once a flit
// arrives, per spec §4.7 treating the terminal as a non-blocking sink).
func (i *Interface) SetInboundCredit(watcher flow.CreditWatcher) { i.inboundCredit = watcher }

// UpstreamCreditWatcher exposes this interface's outbound credit table so
// the first-hop router can return credits into it (typically wrapped in a
// flow.DeferredCreditWatcher for epsilon+1 same-cycle ordering, spec
// §4.3/§5).
func (i *Interface) UpstreamCreditWatcher() flow.CreditWatcher { return i.credits }

// SendMessage fragments a new message of totalBytes payload, addressed to
// destination, into packets of at most MaxPacketSize flits and BytesPerFlit
// bytes each, and submits each packet to the injection algorithm. Zero-
// length messages are rejected (spec §8).
func (i *Interface) SendMessage(destination []int, class flow.ProtocolClass, txn flow.Key, owner any, totalBytes int) *flow.Message {
	if totalBytes <= 0 {
		panic("netif: cannot send a zero-length message")
	}
	totalFlits := (totalBytes + i.bytesPerFlit - 1) / i.bytesPerFlit
	now := i.scheduler.Now()

	msg := flow.NewMessage(i.nextMessageID, i.address, destination, class, txn, owner, now)
	i.nextMessageID++

	remaining := totalFlits
	for remaining > 0 {
		size := remaining
		if size > i.maxPacketSize {
			size = i.maxPacketSize
		}
		pkt := msg.AddPacket(size, now)
		remaining -= size
		i.injRequester.Request(&injectionClient{iface: i}, pkt)
	}
	msg.Validate()
	return msg
}

type injectionClient struct{ iface *Interface }

// InjectionResponse implements inject.Client: picks the candidate VC with the
// shortest send queue (the earliest candidate on ties) and enqueues the
// packet there. Per spec §4.7
// the interface then "queues the packet on the chosen VC" and honors
// per-VC credits toward the first-hop router; the actual credit gating
// happens in the per-cycle send tick, not here.
func (c *injectionClient) InjectionResponse(pkt *flow.Packet, resp *inject.Response) {
	vc := resp.VCs[0]
	for _, cand := range resp.VCs {
		if len(c.iface.vcQueues[cand]) < len(c.iface.vcQueues[vc]) {
			vc = cand
		}
	}
	for _, f := range pkt.Flits {
		f.VC = vc
	}
	c.iface.vcQueues[vc] = append(c.iface.vcQueues[vc], pkt)
	c.iface.ensureTicking()
}

// ensureTicking starts the per-core-cycle send loop when a packet is queued
// and the loop is not running; the loop keeps rescheduling itself every
// cycle while any VC queue holds a packet, so it can drain queues as credits
// arrive, and stops once every queue is empty.
func (i *Interface) ensureTicking() {
	if i.started {
		return
	}
	i.started = true
	i.scheduleNextTick()
}

func (i *Interface) scheduleNextTick() {
	now := i.scheduler.Now()
	next := i.clock.NextBoundary(now, 1)
	i.scheduler.Schedule(next, 0, tickReceiver{i}, nil, tagInterfaceTick)
}

type tickReceiver struct{ iface *Interface }

func (r tickReceiver) ProcessEvent(payload any, tag engine.Tag) { r.iface.tick() }

// tick sends at most one flit per core cycle on the single output channel:
// the flit at the head of the lowest-numbered VC that has a queued flit and
// a credit toward the first-hop router (spec §4.7: "Honor per-VC credits
// toward the first-hop router; block when credits are exhausted"). When
// every VC queue is empty it stops rescheduling itself.
func (i *Interface) tick() {
	for vc := 0; vc < i.numVCs; vc++ {
		queue := i.vcQueues[vc]
		if len(queue) == 0 {
			continue
		}
		if i.credits.Count(vc) == 0 {
			continue
		}
		pkt := queue[0]
		idx := i.vcCursor[vc]
		flit := pkt.Flits[idx]

		i.credits.DecrementCredit(vc)
		i.outputChannel.SetNextFlit(i.scheduler.Now(), flit)

		idx++
		if idx == len(pkt.Flits) {
			i.vcCursor[vc] = 0
			i.vcQueues[vc] = queue[1:]
		} else {
			i.vcCursor[vc] = idx
		}
		break
	}
	for vc := 0; vc < i.numVCs; vc++ {
		if len(i.vcQueues[vc]) > 0 {
			i.scheduleNextTick()
			return
		}
	}
	i.started = false
}

// ReceiveFlit implements flow.ChannelSink on the sink side: it returns a
// credit for every arriving flit and counts a packet delivered when its tail
// flit arrives; once the tails of every packet of a message have arrived,
// it hands the message to the configured MessageReceiver (spec §4.7).
// Head and body flits are not counted or checked for order.
func (i *Interface) ReceiveFlit(flit *flow.Flit) {
	pkt := flit.Packet
	msg := pkt.Message

	if i.inboundCredit != nil {
		i.inboundCredit.IncrementCredit(flit.VC)
	}

	if _, ok := i.packetsLeft[msg]; !ok {
		i.packetsLeft[msg] = len(msg.Packets)
	}

	if flit.Tail {
		i.packetsLeft[msg]--
		if i.packetsLeft[msg] < 0 {
			panic(fmt.Sprintf("netif: interface %s received more tails than packets for message %d", i.name, msg.ID))
		}
		if i.packetsLeft[msg] == 0 {
			delete(i.packetsLeft, msg)
			if i.receiver != nil {
				i.receiver.ReceiveMessage(msg)
			}
		}
	}
}
