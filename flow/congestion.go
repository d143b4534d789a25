package flow

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CongestionTolerance is the fixed tolerance below which two congestion
// readings are treated as equal (spec §4.3).
const CongestionTolerance = 1e-6

// CongestionEqual reports whether a and b differ by less than the fixed
// tolerance.
func CongestionEqual(a, b float64) bool {
	return math.Abs(a-b) < CongestionTolerance
}

// CongestionLessThan reports whether a is strictly less than b, beyond
// tolerance.
func CongestionLessThan(a, b float64) bool {
	return (b - a) >= CongestionTolerance
}

// CongestionGreaterThan reports whether a is strictly greater than b, beyond
// tolerance.
func CongestionGreaterThan(a, b float64) bool {
	return (a - b) >= CongestionTolerance
}

// CongestionSource supplies the raw, un-quantized [0,1] congestion reading
// for a given (inPort, inVC, outPort, outVC) tuple. Implementations are
// provided per router/datapath variant; CongestionStatus wraps one of these
// with granularity quantization.
type CongestionSource interface {
	ComputeStatus(inPort, inVC, outPort, outVC int) float64
}

// CongestionStatus checks that a CongestionSource's readings lie in [0,1]
// (panicking otherwise; it does not rescale them) and optionally quantizes
// them to multiples of 1/granularity (spec §4.3).
// granularity == 0 means "report exactly, no quantization".
type CongestionStatus struct {
	source      CongestionSource
	granularity uint32
}

// NewCongestionStatus wraps source with the given granularity (0 disables
// quantization).
func NewCongestionStatus(source CongestionSource, granularity uint32) *CongestionStatus {
	return &CongestionStatus{source: source, granularity: granularity}
}

// Status returns the (possibly quantized) congestion reading for the given
// tuple. Panics if the underlying source returns a value outside [0,1]
// (invariant violation, spec §7).
func (c *CongestionStatus) Status(inPort, inVC, outPort, outVC int) float64 {
	value := c.source.ComputeStatus(inPort, inVC, outPort, outVC)
	if value < 0.0 || value > 1.0 {
		panic("flow: congestion source returned a value outside [0,1]")
	}
	if c.granularity > 0 {
		g := float64(c.granularity)
		value = math.Round(value*g) / g
	}
	return value
}

// CreditOccupancySource is the concrete CongestionSource: the fraction of a
// VC's configured credit maximum currently consumed, read directly off the
// same per-port CreditTables a router's output-credit path already
// maintains. tables is indexed by output port.
//
// Occupancy readings inherit the deferred update discipline from whatever
// wraps those tables' increments upstream (DeferredCreditWatcher applies
// IncrementCredit at now+(latency-1) with epsilon+1, per spec §4.3); reading
// the same tables the credit path mutates, rather than shadowing them with a
// second counter, is what keeps the reading from ever diverging from real
// occupancy.
//
// Grounded on original_source/src/router/common/congestion/CongestionStatus.cc's
// occupancy tracker, adapted to share state with flow.CreditTable instead of
// duplicating it.
type CreditOccupancySource struct {
	tables []*CreditTable
}

// NewCreditOccupancySource builds a CreditOccupancySource over tables, one
// CreditTable per output port.
func NewCreditOccupancySource(tables []*CreditTable) *CreditOccupancySource {
	return &CreditOccupancySource{tables: tables}
}

// ComputeStatus implements CongestionSource. inPort/inVC do not affect the
// reading: occupancy is a property of the candidate output alone.
func (s *CreditOccupancySource) ComputeStatus(inPort, inVC, outPort, outVC int) float64 {
	t := s.tables[outPort]
	max := t.Max(outVC)
	if max == 0 {
		return 0
	}
	consumed := max - t.Count(outVC)
	return float64(consumed) / float64(max)
}

// RoutingMode selects how a port's congestion is derived from its VCs (spec
// §4.3).
type RoutingMode int

const (
	RoutingModeVC RoutingMode = iota
	RoutingModePortAverage
	RoutingModePortMin
	RoutingModePortMax
)

// ReducePort reduces per-VC congestion readings for one output port to a
// single value according to mode. vcValues must be non-empty for the
// reduction modes (RoutingModeVC expects exactly one value and returns it
// unchanged).
//
// The average/min/max reductions are computed with gonum/floats rather than
// a hand-rolled loop, giving the pack's gonum dependency a direct, exercised
// home (see SPEC_FULL.md DOMAIN STACK).
func ReducePort(mode RoutingMode, vcValues []float64) float64 {
	if len(vcValues) == 0 {
		panic("flow: ReducePort requires at least one VC value")
	}
	switch mode {
	case RoutingModeVC:
		return vcValues[0]
	case RoutingModePortAverage:
		return floats.Sum(vcValues) / float64(len(vcValues))
	case RoutingModePortMin:
		return floats.Min(vcValues)
	case RoutingModePortMax:
		return floats.Max(vcValues)
	default:
		panic("flow: unknown RoutingMode")
	}
}
