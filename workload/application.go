package workload

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/flow"
)

// Application is the lifecycle contract every concrete application
// (blast, pulse, simple-mem, stream) implements, driven by a Coordinator.
// Grounded on original_source/src/workload/Application.cc's call sites in
// Workload.cc (Application.h itself was not retrieved in the pack).
type Application interface {
	ID() int
	Start()
	StartMonitoring()
	Stop()
	Kill()
	EndMonitoring()
	// PercentComplete reports progress in [0,1] for print_progress output
	// (spec §6's print_progress/print_interval options).
	PercentComplete() float64
}

// Terminal is one (application, terminal-index) endpoint, wrapping the
// netif.Interface a message is sent/received through and the transaction
// bookkeeping Application.createTransaction performs in original_source.
type Terminal struct {
	AppID  int
	TermID int
	Sender interface {
		SendMessage(destination []int, class flow.ProtocolClass, txn flow.Key, owner any, totalBytes int) *flow.Message
	}

	nextMsgID   uint32
	createdAt   map[flow.Key]int64
}

// NewTerminal builds a terminal for (appID, termID) sending through sender.
// appID must fit in 8 bits and termID in 24 bits (spec §3's transaction key
// packing).
func NewTerminal(appID, termID int, sender interface {
	SendMessage(destination []int, class flow.ProtocolClass, txn flow.Key, owner any, totalBytes int) *flow.Message
}) *Terminal {
	return &Terminal{AppID: appID, TermID: termID, Sender: sender, createdAt: make(map[flow.Key]int64)}
}

// CreateTransaction allocates the next transaction key for this terminal
// and records its creation time, mirroring
// original_source/src/workload/Application.cc's createTransaction.
func (t *Terminal) CreateTransaction(now int64) flow.Key {
	key := flow.NewKey(t.AppID, t.TermID, t.nextMsgID)
	t.nextMsgID++
	if _, exists := t.createdAt[key]; exists {
		panic(fmt.Sprintf("workload: duplicate transaction key %d", key))
	}
	t.createdAt[key] = now
	return key
}

// EndTransaction removes and returns the creation time recorded by
// CreateTransaction, for latency measurement at delivery.
func (t *Terminal) EndTransaction(key flow.Key) int64 {
	created, ok := t.createdAt[key]
	if !ok {
		panic(fmt.Sprintf("workload: end of unknown transaction %d", key))
	}
	delete(t.createdAt, key)
	return created
}
