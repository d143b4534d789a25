package workload

import (
	"math/rand"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
)

const tagPulseToggle engine.Tag = 300

// PulseApplication alternates between a "pulsing" window (injecting at
// maxOutstanding per terminal, as BlastApplication does) and a quiet window
// of equal configurability, repeating for a fixed number of pulses before
// reporting complete.
//
// Grounded on original_source/src/workload/pulse/Application.h's
// activeTerminals_/completedTerminals_/doneTerminals_ counters; the single
// undifferentiated terminal FSM there is realized here as an explicit
// pulsing/quiet toggle driven by the event scheduler (spec §4.10).
type PulseApplication struct {
	id        int
	terminals []*Terminal
	notifier  Notifier
	scheduler *engine.Scheduler
	clock     engine.ClockDomain
	rng       *rand.Rand
	destOf    DestinationPicker

	pulseOnCycles  int64
	pulseOffCycles int64
	pulseCount     int
	maxOutstanding int
	messageBytes   int
	protocolClass  flow.ProtocolClass

	pulsesDone   int
	pulsing      bool
	sentThisOn   []int
	outstanding  []int
	completed    int
	done         int
	doneReported []bool
}

// PulseConfig bundles PulseApplication construction parameters.
type PulseConfig struct {
	ID             int
	Terminals      []*Terminal
	Notifier       Notifier
	Scheduler      *engine.Scheduler
	Clock          engine.ClockDomain
	RNG            *rand.Rand
	Destination    DestinationPicker
	PulseOnCycles  int64
	PulseOffCycles int64
	PulseCount     int
	MaxOutstanding int
	MessageBytes   int
	ProtocolClass  flow.ProtocolClass
}

// NewPulseApplication builds a PulseApplication from cfg.
func NewPulseApplication(cfg PulseConfig) *PulseApplication {
	if cfg.PulseCount <= 0 || cfg.MaxOutstanding <= 0 {
		panic("workload: pulse requires pulseCount > 0 and maxOutstanding > 0")
	}
	n := len(cfg.Terminals)
	return &PulseApplication{
		id:             cfg.ID,
		terminals:      cfg.Terminals,
		notifier:       cfg.Notifier,
		scheduler:      cfg.Scheduler,
		clock:          cfg.Clock,
		rng:            cfg.RNG,
		destOf:         cfg.Destination,
		pulseOnCycles:  cfg.PulseOnCycles,
		pulseOffCycles: cfg.PulseOffCycles,
		pulseCount:     cfg.PulseCount,
		maxOutstanding: cfg.MaxOutstanding,
		messageBytes:   cfg.MessageBytes,
		protocolClass:  cfg.ProtocolClass,
		sentThisOn:     make([]int, n),
		outstanding:    make([]int, n),
		doneReported:   make([]bool, n),
	}
}

// ID implements Application.
func (a *PulseApplication) ID() int { return a.id }

// ReportReady signals the coordinator that pulse is ready to start.
func (a *PulseApplication) ReportReady() { a.notifier.ApplicationReady(a.id) }

// Start implements Application: enters the first pulsing window.
func (a *PulseApplication) Start() {
	a.pulsing = true
	for term := range a.terminals {
		a.fillWindow(term)
	}
	a.scheduleToggle(a.pulseOnCycles)
}

func (a *PulseApplication) scheduleToggle(cycles int64) {
	now := a.scheduler.Now()
	at := a.clock.NextBoundary(now, uint32(cycles))
	if at <= now {
		at = now + 1
	}
	a.scheduler.Schedule(at, 0, toggleReceiver{a}, nil, tagPulseToggle)
}

type toggleReceiver struct{ app *PulseApplication }

func (r toggleReceiver) ProcessEvent(payload any, tag engine.Tag) { r.app.toggle() }

func (a *PulseApplication) toggle() {
	if a.pulsing {
		a.pulsing = false
		a.pulsesDone++
		if a.pulsesDone >= a.pulseCount {
			a.checkAllComplete()
			return
		}
		a.scheduleToggle(a.pulseOffCycles)
		return
	}
	a.pulsing = true
	for term := range a.terminals {
		a.sentThisOn[term] = 0
		a.fillWindow(term)
	}
	a.scheduleToggle(a.pulseOnCycles)
}

func (a *PulseApplication) fillWindow(term int) {
	if !a.pulsing {
		return
	}
	t := a.terminals[term]
	for a.outstanding[term] < a.maxOutstanding {
		dest := a.destOf(a.rng, term)
		txn := t.CreateTransaction(a.scheduler.Now())
		t.Sender.SendMessage(dest, a.protocolClass, txn, t, a.messageBytes)
		a.sentThisOn[term]++
		a.outstanding[term]++
	}
}

// ReceiveMessage implements netif.MessageReceiver.
func (a *PulseApplication) ReceiveMessage(msg *flow.Message) {
	t := msg.Owner.(*Terminal)
	term := t.TermID
	a.outstanding[term]--
	if a.outstanding[term] < 0 {
		panic("workload: pulse outstanding count underflow")
	}
	if a.pulsing {
		a.fillWindow(term)
	} else if a.pulsesDone >= a.pulseCount {
		a.checkTerminalDone(term)
	}
}

func (a *PulseApplication) checkAllComplete() {
	a.completed = len(a.terminals)
	a.notifier.ApplicationComplete(a.id)
	for term := range a.terminals {
		a.checkTerminalDone(term)
	}
}

func (a *PulseApplication) checkTerminalDone(term int) {
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
func (a *PulseApplication) StartMonitoring() {}

// Stop implements Application.
func (a *PulseApplication) Stop() {}

// Kill implements Application.
func (a *PulseApplication) Kill() {}

// EndMonitoring implements Application.
func (a *PulseApplication) EndMonitoring() {}

// PercentComplete implements Application: fraction of pulses completed.
func (a *PulseApplication) PercentComplete() float64 {
	if a.pulseCount == 0 {
		return 1.0
	}
	return float64(a.pulsesDone) / float64(a.pulseCount)
}
