// Package router implements the per-router datapath: the virtual-channel
// state machine, and the input-queued (IQ) and input-output-queued (IOQ)
// pipeline variants built from the engine, flow, alloc, and routing
// packages (spec §4.5-§4.7).
package router

import (
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/routing"
)

// VCState is the state of one (input port, input VC) pair's FSM (spec §4.5).
type VCState int

const (
	VCIdle VCState = iota
	VCRouting
	VCWaitingVC
	VCActive
	VCTailSeen
)

func (s VCState) String() string {
	switch s {
	case VCIdle:
		return "IDLE"
	case VCRouting:
		return "ROUTING"
	case VCWaitingVC:
		return "WAITING_VC"
	case VCActive:
		return "ACTIVE"
	case VCTailSeen:
		return "TAIL_SEEN"
	default:
		return "UNKNOWN"
	}
}

// vcUnit holds the per (input port, input VC) buffer and FSM state.
type vcUnit struct {
	port, vc int

	state VCState
	queue []*flow.Flit

	candidates []routing.Candidate
	allMinimal bool

	outPort int
	outVC   int

	pendingOutputCredits int
	tailSent             bool
}

func newVCUnit(port, vc int) *vcUnit {
	return &vcUnit{port: port, vc: vc, state: VCIdle}
}

// reset clears the routing record, returning the unit to IDLE. Called once
// the tail's output credit has fully returned (spec §4.5: "TAIL_SEEN -> IDLE
// | tail credit returned; output VC released; routing record cleared").
func (u *vcUnit) reset() {
	u.state = VCIdle
	u.candidates = nil
	u.allMinimal = false
	u.outPort = 0
	u.outVC = 0
	u.pendingOutputCredits = 0
	u.tailSent = false
}
