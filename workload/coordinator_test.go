package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApp struct {
	id                              int
	started, stopped, killed        bool
	startMonitored, endMonitored    bool
}

func (a *fakeApp) ID() int                 { return a.id }
func (a *fakeApp) Start()                  { a.started = true }
func (a *fakeApp) StartMonitoring()        { a.startMonitored = true }
func (a *fakeApp) Stop()                   { a.stopped = true }
func (a *fakeApp) Kill()                   { a.killed = true }
func (a *fakeApp) EndMonitoring()          { a.endMonitored = true }
func (a *fakeApp) PercentComplete() float64 { return 1.0 }

type fakeNetwork struct {
	startCount, endCount int
}

func (n *fakeNetwork) StartMonitoring() { n.startCount++ }
func (n *fakeNetwork) EndMonitoring()   { n.endCount++ }

func TestCoordinator_FullLifecycle_TwoApplications(t *testing.T) {
	apps := []Application{&fakeApp{id: 0}, &fakeApp{id: 1}}
	net := &fakeNetwork{}
	c := NewCoordinator(apps, net)

	assert.Equal(t, FsmReady, c.Fsm())

	c.ApplicationReady(0)
	assert.Equal(t, FsmReady, c.Fsm(), "not all ready yet")
	c.ApplicationReady(1)
	assert.Equal(t, FsmComplete, c.Fsm())
	assert.Equal(t, 1, net.startCount)
	for _, a := range apps {
		fa := a.(*fakeApp)
		assert.True(t, fa.started)
		assert.True(t, fa.startMonitored)
	}

	c.ApplicationComplete(0)
	assert.Equal(t, FsmComplete, c.Fsm())
	c.ApplicationComplete(1)
	assert.Equal(t, FsmDone, c.Fsm())
	for _, a := range apps {
		assert.True(t, a.(*fakeApp).stopped)
	}

	c.ApplicationDone(0)
	c.ApplicationDone(1)
	assert.Equal(t, FsmKilled, c.Fsm())
	assert.Equal(t, 1, net.endCount)
	for _, a := range apps {
		fa := a.(*fakeApp)
		assert.True(t, fa.killed)
		assert.True(t, fa.endMonitored)
	}
}

func TestCoordinator_DuplicateReadyPanics(t *testing.T) {
	apps := []Application{&fakeApp{id: 0}}
	c := NewCoordinator(apps, nil)
	c.ApplicationReady(0)
	require.Panics(t, func() { c.ApplicationReady(0) })
}

func TestCoordinator_NilNetworkMonitorIsOptional(t *testing.T) {
	apps := []Application{&fakeApp{id: 0}}
	c := NewCoordinator(apps, nil)
	assert.NotPanics(t, func() {
		c.ApplicationReady(0)
		c.ApplicationComplete(0)
		c.ApplicationDone(0)
	})
	assert.Equal(t, FsmKilled, c.Fsm())
}
