package netif

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/hpinterconnect/interconnect-sim/inject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReceiver struct {
	received []*flow.Message
}

func (r *recordingReceiver) ReceiveMessage(msg *flow.Message) {
	r.received = append(r.received, msg)
}

func buildLoopbackInterface(t *testing.T, sched *engine.Scheduler, clock engine.ClockDomain, recv MessageReceiver) *Interface {
	t.Helper()
	iface := NewInterface(Config{
		Name:          "if0",
		ID:            0,
		Address:       []int{0},
		Scheduler:     sched,
		Clock:         clock,
		NumVCs:        2,
		MaxPacketSize: 4,
		BytesPerFlit:  1,
		Injection:     inject.NewAnyVC(0, 2),
		Receiver:      recv,
	})
	ch := flow.NewChannel("if0.loop", sched, clock, iface, 1)
	iface.SetOutputChannel(ch)
	iface.InitCredits(0, 8)
	iface.InitCredits(1, 8)
	return iface
}

func TestInterface_FragmentsAndDeliversSinglePacketMessage(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	recv := &recordingReceiver{}
	iface := buildLoopbackInterface(t, sched, clock, recv)

	msg := iface.SendMessage([]int{1}, 0, flow.NewKey(0, 0, 0), nil, 3)
	sched.Run()

	require.Len(t, recv.received, 1)
	assert.Same(t, msg, recv.received[0])
	assert.Len(t, msg.Packets, 1)
	assert.Equal(t, 3, msg.Packets[0].Size())
}

func TestInterface_FragmentsIntoMultiplePackets(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	recv := &recordingReceiver{}
	iface := buildLoopbackInterface(t, sched, clock, recv)

	msg := iface.SendMessage([]int{1}, 0, flow.NewKey(0, 0, 0), nil, 10)
	sched.Run()

	require.Len(t, recv.received, 1)
	assert.Same(t, msg, recv.received[0])
	// maxPacketSize=4, 10 flits -> 3 packets (4,4,2)
	require.Len(t, msg.Packets, 3)
	assert.Equal(t, 4, msg.Packets[0].Size())
	assert.Equal(t, 4, msg.Packets[1].Size())
	assert.Equal(t, 2, msg.Packets[2].Size())
}

func TestInterface_ZeroLengthMessageRejected(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	iface := buildLoopbackInterface(t, sched, clock, &recordingReceiver{})

	require.Panics(t, func() {
		iface.SendMessage([]int{1}, 0, flow.NewKey(0, 0, 0), nil, 0)
	})
}

func TestInterface_SingleFlitPacketIsHeadAndTail(t *testing.T) {
	sched := engine.NewScheduler()
	clock := engine.NewClockDomain(1)
	recv := &recordingReceiver{}
	iface := buildLoopbackInterface(t, sched, clock, recv)

	iface.SendMessage([]int{1}, 0, flow.NewKey(0, 0, 0), nil, 1)
	sched.Run()

	require.Len(t, recv.received, 1)
	flit := recv.received[0].Packets[0].Flits[0]
	assert.True(t, flit.Head)
	assert.True(t, flit.Tail)
}
