// Package workload implements the Workload Coordinator (spec §4.9): the
// application lifecycle FSM that gates the measurement window, the
// MessageDistributor that demultiplexes delivered messages to (app,
// terminal) pairs, and the concrete applications recovered from
// original_source/src/workload/* (blast, pulse, simple-mem, stream).
//
// Grounded directly on original_source/src/workload/Workload.cc: the
// readyCount_/completeCount_/doneCount_ counters gating fsm_ transitions
// are carried over verbatim, generalized from a fixed Network-owned
// interface count to whatever NumTerminals the caller configures.
package workload

// Fsm is the coordinator-wide lifecycle state (spec §4.9).
type Fsm int

const (
	FsmReady Fsm = iota
	FsmComplete
	FsmDone
	FsmKilled
)

func (f Fsm) String() string {
	switch f {
	case FsmReady:
		return "READY"
	case FsmComplete:
		return "COMPLETE"
	case FsmDone:
		return "DONE"
	case FsmKilled:
		return "KILLED"
	default:
		return "UNKNOWN"
	}
}

// NetworkMonitor is the subset of network-wide monitoring the coordinator
// toggles once all applications are ready, and again once all are done
// (spec §4.9: "enables network+application monitoring").
type NetworkMonitor interface {
	StartMonitoring()
	EndMonitoring()
}

// Coordinator synchronizes Applications through READY -> COMPLETE -> DONE ->
// KILLED, gating the measurement window (spec §4.9). Each application
// reports Ready/Complete/Done exactly once.
type Coordinator struct {
	fsm       Fsm
	apps      []Application
	network   NetworkMonitor
	monitoring bool

	readyCount    int
	completeCount int
	doneCount     int

	readyReported    map[int]bool
	completeReported map[int]bool
	doneReported     map[int]bool
}

// NewCoordinator builds a Coordinator over apps (indexed by application id)
// and the network-wide monitor to toggle alongside them.
func NewCoordinator(apps []Application, network NetworkMonitor) *Coordinator {
	return &Coordinator{
		fsm:              FsmReady,
		apps:             apps,
		network:          network,
		readyReported:    make(map[int]bool),
		completeReported: make(map[int]bool),
		doneReported:     make(map[int]bool),
	}
}

// Fsm returns the coordinator's current lifecycle state.
func (c *Coordinator) Fsm() Fsm { return c.fsm }

// SetApplications wires the coordinator's application set after
// construction, for callers that must build the Coordinator (as an
// Application's Notifier) before the applications it will notify exist.
// Must be called before any application reports ready.
func (c *Coordinator) SetApplications(apps []Application) {
	if c.fsm != FsmReady || c.readyCount != 0 {
		panic("workload: SetApplications called after the lifecycle started")
	}
	c.apps = apps
}

// ApplicationReady reports that application appID has reported ready.
// Once every application has reported ready, every application's Start and
// StartMonitoring are invoked and network+application monitoring is
// enabled (spec §4.9).
func (c *Coordinator) ApplicationReady(appID int) {
	if c.readyReported[appID] {
		panic("workload: application reported ready more than once")
	}
	c.readyReported[appID] = true
	c.readyCount++
	if c.readyCount > len(c.apps) {
		panic("workload: ready count exceeds application count")
	}

	if c.readyCount == len(c.apps) {
		if c.fsm != FsmReady {
			panic("workload: all-ready reached outside FsmReady")
		}
		c.fsm = FsmComplete
		for _, app := range c.apps {
			app.Start()
			app.StartMonitoring()
		}
		c.monitoring = true
		if c.network != nil {
			c.network.StartMonitoring()
		}
	}
}

// ApplicationComplete reports that application appID has finished issuing
// new work. Once every application has reported complete, every
// application's Stop is invoked (spec §4.9).
func (c *Coordinator) ApplicationComplete(appID int) {
	if c.completeReported[appID] {
		panic("workload: application reported complete more than once")
	}
	c.completeReported[appID] = true
	c.completeCount++
	if c.completeCount > len(c.apps) {
		panic("workload: complete count exceeds application count")
	}

	if c.completeCount == len(c.apps) {
		if c.fsm != FsmComplete {
			panic("workload: all-complete reached outside FsmComplete")
		}
		c.fsm = FsmDone
		for _, app := range c.apps {
			app.Stop()
		}
	}
}

// ApplicationDone reports that application appID has drained every
// in-flight message. Once every application is done, every application's
// Kill is invoked, monitoring ends, and the event loop is left to drain
// naturally with no more scheduled work (spec §4.9).
func (c *Coordinator) ApplicationDone(appID int) {
	if c.doneReported[appID] {
		panic("workload: application reported done more than once")
	}
	c.doneReported[appID] = true
	c.doneCount++
	if c.doneCount > len(c.apps) {
		panic("workload: done count exceeds application count")
	}

	if c.doneCount == len(c.apps) {
		if c.fsm != FsmDone {
			panic("workload: all-done reached outside FsmDone")
		}
		c.fsm = FsmKilled
		for _, app := range c.apps {
			app.Kill()
			app.EndMonitoring()
		}
		if c.monitoring {
			c.monitoring = false
			if c.network != nil {
				c.network.EndMonitoring()
			}
		}
	}
}
