package flow

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/engine"
)

// CreditWatcher is the single interface devices use to observe and mutate
// per-VC credit activity. The same interface is used by both the router and
// the channel namespaces in the source this spec was distilled from (spec
// §9's "dual-role endpoints" note); we define it once and inject whichever
// concrete CreditTable is relevant.
type CreditWatcher interface {
	InitCredits(vc int, max uint32)
	IncrementCredit(vc int)
	DecrementCredit(vc int)
}

// CreditTable is a per-(channel-endpoint, VC) nonnegative counter bounded by
// a configured maximum (spec §3). Increments/decrements are applied
// immediately by IncrementCredit/DecrementCredit; the deferred, same-cycle-ordered scheduling
// required by spec §4.3 is handled by DeferredCreditWatcher, which wraps a
// CreditTable.
type CreditTable struct {
	counts []uint32
	max    []uint32
}

// NewCreditTable allocates a table for numVCs virtual channels, all
// initialized to zero credits with zero max (call InitCredits per VC before
// use).
func NewCreditTable(numVCs int) *CreditTable {
	return &CreditTable{counts: make([]uint32, numVCs), max: make([]uint32, numVCs)}
}

// InitCredits sets the maximum (and current) credit count for vc.
func (t *CreditTable) InitCredits(vc int, max uint32) {
	t.counts[vc] = max
	t.max[vc] = max
}

// IncrementCredit returns a credit to vc. Panics on overflow past the
// configured maximum (spec §7: invariant violation).
func (t *CreditTable) IncrementCredit(vc int) {
	if t.counts[vc] >= t.max[vc] {
		panic(fmt.Sprintf("flow: credit overflow on vc %d (max %d)", vc, t.max[vc]))
	}
	t.counts[vc]++
}

// DecrementCredit consumes a credit from vc. Panics on underflow (spec §7).
//
// This is the strict decrement the spec requires (§4.3/§9): the teacher
// source's congestion-tracker DECR case increments the counter by mistake;
// that bug is not reproduced here.
func (t *CreditTable) DecrementCredit(vc int) {
	if t.counts[vc] == 0 {
		panic(fmt.Sprintf("flow: credit underflow on vc %d", vc))
	}
	t.counts[vc]--
}

// Count returns the current credit count for vc.
func (t *CreditTable) Count(vc int) uint32 { return t.counts[vc] }

// Max returns the configured maximum credit count for vc.
func (t *CreditTable) Max(vc int) uint32 { return t.max[vc] }

// DeferredCreditWatcher wraps a CreditWatcher so that increment/decrement
// effects are applied at now + (latency-1) cycles with epsilon+1, per spec
// §4.3: "Changes apply at now + (latency-1) cycles with epsilon+1 to
// guarantee same-cycle ordering after the triggering event." The wrapped
// target is any CreditWatcher, not just a CreditTable, so a router's
// output-side credit adapter can be deferred the same way a plain table can
// (spec §9's "dual-role endpoints" note).
type DeferredCreditWatcher struct {
	target    CreditWatcher
	scheduler *engine.Scheduler
	latency   int64
}

const tagCreditApply engine.Tag = 2

type creditOp int

const (
	creditOpIncrement creditOp = iota
	creditOpDecrement
)

type creditEvent struct {
	vc int
	op creditOp
}

// NewDeferredCreditWatcher wraps target with deferred scheduling through
// sched, using the given latency (in cycles).
func NewDeferredCreditWatcher(target CreditWatcher, sched *engine.Scheduler, latency int64) *DeferredCreditWatcher {
	return &DeferredCreditWatcher{target: target, scheduler: sched, latency: latency}
}

// InitCredits delegates immediately (initialization is not a "change" that
// requires deferral).
func (w *DeferredCreditWatcher) InitCredits(vc int, max uint32) {
	w.target.InitCredits(vc, max)
}

// IncrementCredit schedules the credit return at now+(latency-1) with
// epsilon+1.
func (w *DeferredCreditWatcher) IncrementCredit(vc int) {
	w.schedule(vc, creditOpIncrement)
}

// DecrementCredit schedules the credit consumption at now+(latency-1) with
// epsilon+1.
func (w *DeferredCreditWatcher) DecrementCredit(vc int) {
	w.schedule(vc, creditOpDecrement)
}

func (w *DeferredCreditWatcher) schedule(vc int, op creditOp) {
	now := w.scheduler.Now()
	epsilon := w.scheduler.Epsilon()
	deliverTime := now + (w.latency - 1)
	deliverEpsilon := epsilon + 1
	if deliverTime < now {
		deliverTime = now
	}
	w.scheduler.Schedule(deliverTime, deliverEpsilon, w, creditEvent{vc: vc, op: op}, tagCreditApply)
}

// ProcessEvent applies the deferred credit mutation.
func (w *DeferredCreditWatcher) ProcessEvent(payload any, tag engine.Tag) {
	ev := payload.(creditEvent)
	switch ev.op {
	case creditOpIncrement:
		w.target.IncrementCredit(ev.vc)
	case creditOpDecrement:
		w.target.DecrementCredit(ev.vc)
	}
}
