package workload

import (
	"fmt"

	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/netif"
)

// MessageDistributor demultiplexes messages delivered at one interface to
// the (application, terminal) pair that owns them, keyed by the message's
// transaction AppID field. Grounded directly on
// original_source/src/workload/MessageDistributor.h's receivers_ vector
// indexed by application id.
type MessageDistributor struct {
	receivers []netif.MessageReceiver // indexed by application id
}

// NewMessageDistributor builds a distributor over numApps application
// slots, all initially unset.
func NewMessageDistributor(numApps int) *MessageDistributor {
	return &MessageDistributor{receivers: make([]netif.MessageReceiver, numApps)}
}

// SetReceiver wires application appID's receiver.
func (d *MessageDistributor) SetReceiver(appID int, receiver netif.MessageReceiver) {
	d.receivers[appID] = receiver
}

// ReceiveMessage implements netif.MessageReceiver: routes msg to the
// receiver registered for its transaction's AppID field.
func (d *MessageDistributor) ReceiveMessage(msg *flow.Message) {
	appID := msg.Transaction.AppID()
	if appID < 0 || appID >= len(d.receivers) || d.receivers[appID] == nil {
		panic(fmt.Sprintf("workload: message %d has no registered receiver for app %d", msg.ID, appID))
	}
	d.receivers[appID].ReceiveMessage(msg)
}
