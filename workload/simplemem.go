package workload

import (
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

// MemoryClass distinguishes a simple-mem request's protocol class: loads
// travel on one class and get a response on another, stores travel on one
// class with no response.
type MemoryClass int

const (
	MemoryClassLoadRequest MemoryClass = iota
	MemoryClassLoadResponse
	MemoryClassStoreRequest
)

// SimpleMemApplication pairs load requests with responses (read) and fires
// stores with no response (write), at a configurable read/write ratio, one
// outstanding request per terminal at a time.
//
// Grounded on original_source/src/workload/simplemem/Application.h's
// totalMemory_/memorySlice_/blockSize_ fields (a memory address space
// divided per terminal); simplified to terminal-count-many independent
// request streams rather than a shared global address space, since address
// translation is a topology concern the core does not own (spec §1).
type SimpleMemApplication struct {
	id          int
	requesters  []*Terminal // terminals issuing loads/stores
	respondersOf func(term int) []int // destination address for requester's memory controller
	notifier    Notifier
	scheduler   *engine.Scheduler
	rng         *rand.Rand

	readFraction float64
	requestBytes int
	responseBytes int
	requestsPerTerminal int

	sent      []int
	pending   []bool
	completed int
	done      int
}

// SimpleMemConfig bundles SimpleMemApplication construction parameters.
type SimpleMemConfig struct {
	ID                  int
	Requesters          []*Terminal
	ResponderOf         func(term int) []int
	Notifier            Notifier
	Scheduler           *engine.Scheduler
	RNG                 *rand.Rand
	ReadFraction        float64
	RequestBytes        int
	ResponseBytes       int
	RequestsPerTerminal int
}

// NewSimpleMemApplication builds a SimpleMemApplication from cfg.
func NewSimpleMemApplication(cfg SimpleMemConfig) *SimpleMemApplication {
	if cfg.RequestsPerTerminal <= 0 {
		panic("workload: simplemem requires requestsPerTerminal > 0")
	}
	n := len(cfg.Requesters)
	return &SimpleMemApplication{
		id:                  cfg.ID,
		requesters:          cfg.Requesters,
		respondersOf:        cfg.ResponderOf,
		notifier:            cfg.Notifier,
		scheduler:           cfg.Scheduler,
		rng:                 cfg.RNG,
		readFraction:        cfg.ReadFraction,
		requestBytes:        cfg.RequestBytes,
		responseBytes:       cfg.ResponseBytes,
		requestsPerTerminal: cfg.RequestsPerTerminal,
		sent:                make([]int, n),
		pending:             make([]bool, n),
	}
}

// ID implements Application.
func (a *SimpleMemApplication) ID() int { return a.id }

// ReportReady signals the coordinator that simple-mem is ready to start.
func (a *SimpleMemApplication) ReportReady() { a.notifier.ApplicationReady(a.id) }

// Start implements Application: issues each terminal's first request
// (one outstanding request per terminal at a time).
func (a *SimpleMemApplication) Start() {
	for term := range a.requesters {
		a.issueNext(term)
	}
}

func (a *SimpleMemApplication) issueNext(term int) {
	if a.sent[term] >= a.requestsPerTerminal {
		return
	}
	t := a.requesters[term]
	dest := a.respondersOf(term)
	txn := t.CreateTransaction(a.scheduler.Now())
	isRead := a.rng.Float64() < a.readFraction
	a.sent[term]++
	a.pending[term] = true
	if isRead {
		t.Sender.SendMessage(dest, flow.ProtocolClass(MemoryClassLoadRequest), txn, requestContext{term: term, txn: txn, isRead: true}, a.requestBytes)
	} else {
		t.Sender.SendMessage(dest, flow.ProtocolClass(MemoryClassStoreRequest), txn, requestContext{term: term, txn: txn, isRead: false}, a.requestBytes)
		a.onRequestSettled(term)
	}
}

// requestContext is carried as the message's Owner so the responding side
// (a memory controller outside the core's scope) knows where to send the
// load response, and the requesting side can attribute a response back to
// its originating terminal without a topology lookup.
type requestContext struct {
	term   int
	txn    flow.Key
	isRead bool
}

// ReceiveMessage implements netif.MessageReceiver: a load response arriving
// at the requester completes that terminal's outstanding request.
func (a *SimpleMemApplication) ReceiveMessage(msg *flow.Message) {
	ctx := msg.Owner.(requestContext)
	a.onRequestSettled(ctx.term)
}

func (a *SimpleMemApplication) onRequestSettled(term int) {
	a.pending[term] = false
	if a.sent[term] < a.requestsPerTerminal {
		a.issueNext(term)
		return
	}
	a.completed++
	if a.completed == len(a.requesters) {
		a.notifier.ApplicationComplete(a.id)
	}
	a.done++
	if a.done == len(a.requesters) {
		a.notifier.ApplicationDone(a.id)
	}
}

// StartMonitoring implements Application.
func (a *SimpleMemApplication) StartMonitoring() {}

// Stop implements Application.
func (a *SimpleMemApplication) Stop() {}

// Kill implements Application.
func (a *SimpleMemApplication) Kill() {}

// EndMonitoring implements Application.
func (a *SimpleMemApplication) EndMonitoring() {}

// PercentComplete implements Application.
func (a *SimpleMemApplication) PercentComplete() float64 {
	total := a.requestsPerTerminal * len(a.requesters)
	if total == 0 {
		return 1.0
	}
	sent := 0
	for _, s := range a.sent {
		sent += s
	}
	return float64(sent) / float64(total)
}
