package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct{ value float64 }

func (f fixedSource) ComputeStatus(inPort, inVC, outPort, outVC int) float64 { return f.value }

func TestCongestionStatus_GranularityZeroReportsExactly(t *testing.T) {
	cs := NewCongestionStatus(fixedSource{0.3333333}, 0)
	assert.Equal(t, 0.3333333, cs.Status(0, 0, 0, 0))
}

func TestCongestionStatus_GranularityQuantizesToMultiple(t *testing.T) {
	cs := NewCongestionStatus(fixedSource{0.37}, 4) // multiples of 0.25
	got := cs.Status(0, 0, 0, 0)
	assert.Equal(t, 0.25, got)
}

func TestCongestionStatus_OutOfRangePanics(t *testing.T) {
	cs := NewCongestionStatus(fixedSource{1.5}, 0)
	require.Panics(t, func() { cs.Status(0, 0, 0, 0) })
}

func TestCongestionTolerance_Comparisons(t *testing.T) {
	assert.True(t, CongestionEqual(0.5, 0.5+1e-7))
	assert.False(t, CongestionEqual(0.5, 0.5+1e-5))
	assert.True(t, CongestionLessThan(0.1, 0.2))
	assert.False(t, CongestionLessThan(0.1, 0.1+1e-7))
	assert.True(t, CongestionGreaterThan(0.3, 0.1))
}

func TestReducePort_Modes(t *testing.T) {
	vals := []float64{0.2, 0.8, 0.5}
	assert.InDelta(t, 0.5, ReducePort(RoutingModePortAverage, vals), 1e-9)
	assert.Equal(t, 0.2, ReducePort(RoutingModePortMin, vals))
	assert.Equal(t, 0.8, ReducePort(RoutingModePortMax, vals))
	assert.Equal(t, 0.2, ReducePort(RoutingModeVC, vals))
}

func TestReducePort_EmptyPanics(t *testing.T) {
	require.Panics(t, func() { ReducePort(RoutingModePortAverage, nil) })
}
