package inject

import (
	"testing"

	"github.com/hpinterconnect/interconnect-sim/engine"
	"github.com/hpinterconnect/interconnect-sim/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAlgorithm struct {
	latency int64
	vcs     []int
}

func (f fixedAlgorithm) Latency() int64                          { return f.latency }
func (f fixedAlgorithm) ProcessRequest(pkt *flow.Packet) Response { return Response{VCs: f.vcs} }

type emptyAlgorithm struct{}

func (emptyAlgorithm) Latency() int64                          { return 1 }
func (emptyAlgorithm) ProcessRequest(pkt *flow.Packet) Response { return Response{} }

type capturingClient struct {
	got *Response
}

func (c *capturingClient) InjectionResponse(pkt *flow.Packet, resp *Response) {
	c.got = resp
}

func newTestPacket(numFlits int) *flow.Packet {
	msg := flow.NewMessage(0, nil, nil, 0, flow.NewKey(0, 0, 0), nil, 0)
	return msg.AddPacket(numFlits, 0)
}

func TestRequester_DeliversAfterLatency(t *testing.T) {
	sched := engine.NewScheduler()
	algo := fixedAlgorithm{latency: 3, vcs: []int{0, 1}}
	rq := NewRequester(sched, algo)
	client := &capturingClient{}

	rq.Request(client, newTestPacket(1))
	sched.Run()

	require.NotNil(t, client.got)
	assert.Equal(t, []int{0, 1}, client.got.VCs)
}

func TestRequester_SameCycleLatencyStillDelivers(t *testing.T) {
	sched := engine.NewScheduler()
	algo := fixedAlgorithm{latency: 0, vcs: []int{2}}
	rq := NewRequester(sched, algo)
	client := &capturingClient{}

	rq.Request(client, newTestPacket(1))
	sched.Run()

	require.NotNil(t, client.got)
	assert.Equal(t, []int{2}, client.got.VCs)
}

func TestRequester_EmptyResponsePanics(t *testing.T) {
	sched := engine.NewScheduler()
	rq := NewRequester(sched, emptyAlgorithm{})
	client := &capturingClient{}

	rq.Request(client, newTestPacket(1))
	require.Panics(t, func() { sched.Run() })
}
