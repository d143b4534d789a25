package workload

import (
	"math"
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

const tagStreamArrival engine.Tag = 310

// StreamApplication injects messages from every terminal at a Poisson
// arrival rate (or a fixed inter-arrival gap when Rate == 0) until
// RequestStop is called, then drains outstanding messages before reporting
// done.
//
// Grounded on original_source/src/workload/singlestream/Application.h's
// single (source, destination) stream, generalized from one hardcoded pair
// to every terminal per SPEC_FULL.md's "generalized to a rate distribution"
// note, using the teacher's GeneratePoissonArrivals exponential
// inter-arrival draw (sim/simulator.go) via runtime.PartitionedRNG.
type StreamApplication struct {
	id        int
	terminals []*Terminal
	notifier  Notifier
	scheduler *engine.Scheduler
	rng       *rand.Rand
	destOf    DestinationPicker

	rate          float64 // messages per cycle per terminal; 0 means fixedGap
	fixedGap      int64
	messageBytes  int
	protocolClass flow.ProtocolClass

	running     bool
	outstanding []int
	doneReported []bool
	done        int
}

// StreamConfig bundles StreamApplication construction parameters.
type StreamConfig struct {
	ID            int
	Terminals     []*Terminal
	Notifier      Notifier
	Scheduler     *engine.Scheduler
	RNG           *rand.Rand
	Destination   DestinationPicker
	Rate          float64 // messages/cycle/terminal; 0 selects FixedGap
	FixedGap      int64
	MessageBytes  int
	ProtocolClass flow.ProtocolClass
}

// NewStreamApplication builds a StreamApplication from cfg.
func NewStreamApplication(cfg StreamConfig) *StreamApplication {
	n := len(cfg.Terminals)
	return &StreamApplication{
		id:            cfg.ID,
		terminals:     cfg.Terminals,
		notifier:      cfg.Notifier,
		scheduler:     cfg.Scheduler,
		rng:           cfg.RNG,
		destOf:        cfg.Destination,
		rate:          cfg.Rate,
		fixedGap:      cfg.FixedGap,
		messageBytes:  cfg.MessageBytes,
		protocolClass: cfg.ProtocolClass,
		outstanding:   make([]int, n),
		doneReported:  make([]bool, n),
	}
}

// ID implements Application.
func (a *StreamApplication) ID() int { return a.id }

// ReportReady signals the coordinator that stream is ready to start.
func (a *StreamApplication) ReportReady() { a.notifier.ApplicationReady(a.id) }

// Start implements Application: schedules the first arrival for every
// terminal.
func (a *StreamApplication) Start() {
	a.running = true
	for term := range a.terminals {
		a.scheduleArrival(term)
	}
}

func (a *StreamApplication) nextGap() int64 {
	if a.rate > 0 {
		// Exponential inter-arrival draw for a Poisson process, matching
		// sim/simulator.go's GeneratePoissonArrivals.
		u := a.rng.Float64()
		gap := -math.Log(1-u) / a.rate
		if gap < 1 {
			gap = 1
		}
		return int64(gap)
	}
	return a.fixedGap
}

func (a *StreamApplication) scheduleArrival(term int) {
	at := a.scheduler.Now() + a.nextGap()
	a.scheduler.Schedule(at, 0, arrivalReceiver{a, term}, nil, tagStreamArrival)
}

type arrivalReceiver struct {
	app  *StreamApplication
	term int
}

func (r arrivalReceiver) ProcessEvent(payload any, tag engine.Tag) { r.app.arrive(r.term) }

func (a *StreamApplication) arrive(term int) {
	if !a.running {
		return
	}
	t := a.terminals[term]
	dest := a.destOf(a.rng, term)
	txn := t.CreateTransaction(a.scheduler.Now())
	t.Sender.SendMessage(dest, a.protocolClass, txn, t, a.messageBytes)
	a.outstanding[term]++
	a.scheduleArrival(term)
}

// ReceiveMessage implements netif.MessageReceiver.
func (a *StreamApplication) ReceiveMessage(msg *flow.Message) {
	t := msg.Owner.(*Terminal)
	term := t.TermID
	a.outstanding[term]--
	if a.outstanding[term] < 0 {
		panic("workload: stream outstanding count underflow")
	}
	if !a.running {
		a.checkTerminalDone(term)
	}
}

func (a *StreamApplication) checkTerminalDone(term int) {
	if a.outstanding[term] != 0 || a.doneReported[term] {
		return
	}
	a.doneReported[term] = true
	a.done++
	if a.done == len(a.terminals) {
		a.notifier.ApplicationDone(a.id)
	}
}

// StartMonitoring implements Application.
func (a *StreamApplication) StartMonitoring() {}

// RequestStop halts new arrivals and reports this application complete to
// the coordinator; once every terminal drains its outstanding messages,
// Done is reported (spec §4.9). Unlike blast/pulse (which self-report
// complete once their fixed workload is exhausted), stream runs
// indefinitely until an external driver calls RequestStop; nothing in
// cmd/interconnect-sim calls it.
func (a *StreamApplication) RequestStop() {
	a.running = false
	a.notifier.ApplicationComplete(a.id)
	for term := range a.terminals {
		a.checkTerminalDone(term)
	}
}

// Stop implements Application: invoked by the coordinator only after every
// application (including this one) has already reported complete via
// RequestStop, so arrivals are already halted by the time this runs.
func (a *StreamApplication) Stop() {}

// Kill implements Application.
func (a *StreamApplication) Kill() {}

// EndMonitoring implements Application.
func (a *StreamApplication) EndMonitoring() {}

// PercentComplete implements Application: stream runs until externally
// stopped, so completeness is reported as 0.0 while arrivals are running and
// 1.0 otherwise (before Start and after RequestStop); there is no fixed
// total to divide against.
func (a *StreamApplication) PercentComplete() float64 {
	if !a.running {
		return 1.0
	}
	return 0.0
}
