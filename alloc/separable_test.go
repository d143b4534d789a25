package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArbiters(n int) []Arbiter {
	arbiters := make([]Arbiter, n)
	for i := range arbiters {
		arbiters[i] = NewRoundRobinArbiterAt(n, i)
	}
	return arbiters
}

func TestSeparable_GrantIsSubsetOfRequest(t *testing.T) {
	m := NewMatrix(4, 4)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m.SetRequest(c, r, true)
		}
	}
	requestedBefore := make([][2]int, 0)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if m.Request(c, r) {
				requestedBefore = append(requestedBefore, [2]int{c, r})
			}
		}
	}

	s := NewSeparable(m, newArbiters(4), newArbiters(4), 1, true)
	s.Allocate()

	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if m.Grant(c, r) {
				found := false
				for _, pair := range requestedBefore {
					if pair[0] == c && pair[1] == r {
						found = true
					}
				}
				assert.True(t, found, "grant (%d,%d) was not among original requests", c, r)
			}
		}
	}
}

func TestSeparable_FullRequestMatrixProducesPermutation(t *testing.T) {
	m := NewMatrix(4, 4)
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m.SetRequest(c, r, true)
		}
	}
	s := NewSeparable(m, newArbiters(4), newArbiters(4), 1, true)
	s.Allocate()

	require.True(t, m.IsMatching())
	grants := 0
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if m.Grant(c, r) {
				grants++
			}
		}
	}
	assert.Equal(t, 4, grants)
}

func TestSeparable_IterationsOneEqualsSingleRound(t *testing.T) {
	m1 := NewMatrix(3, 3)
	reqs := [][2]int{{0, 0}, {0, 1}, {1, 1}, {2, 2}}
	for _, rq := range reqs {
		m1.SetRequest(rq[0], rq[1], true)
	}

	s1 := NewSeparable(m1, newArbiters(3), newArbiters(3), 1, false)
	s1.Allocate()

	// One request-grant round traced by hand: each client arbiter starts at
	// its own index, so client 0 picks resource 0, client 1 resource 1 and
	// client 2 resource 2, and each resource then sees a single request.
	want := map[[2]int]bool{{0, 0}: true, {1, 1}: true, {2, 2}: true}

	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			assert.Equal(t, want[[2]int{c, r}], m1.Grant(c, r))
		}
	}
}

func TestSeparable_LatchAlwaysAdvancesEveryIterationRegardlessOfWinning(t *testing.T) {
	m := NewMatrix(2, 2)
	m.SetRequest(0, 0, true) // only client 0 ever requests resource 0

	clientArb := []Arbiter{NewRoundRobinArbiterAt(2, 0), NewRoundRobinArbiterAt(2, 1)}
	resourceArb := []Arbiter{NewRoundRobinArbiterAt(2, 0), NewRoundRobinArbiterAt(2, 1)}
	s := NewSeparable(m, clientArb, resourceArb, 3, false)
	s.Allocate()

	// client 1 never requests, so its arbiter has no winner and its Latch
	// leaves the pointer where it was; this is a smoke check that a
	// three-iteration Allocate doesn't panic and produces a matching result.
	assert.True(t, m.IsMatching())
}

func TestSeparable_ISlipFrequencyIsRoughlyUniform(t *testing.T) {
	const n = 4
	const trials = 400
	wins := make(map[[2]int]int)

	clientArb := make([]Arbiter, n)
	resourceArb := make([]Arbiter, n)
	for i := 0; i < n; i++ {
		clientArb[i] = NewRoundRobinArbiter(n)
		resourceArb[i] = NewRoundRobinArbiter(n)
	}
	m := NewMatrix(n, n)
	s := NewSeparable(m, clientArb, resourceArb, 1, true)

	for trial := 0; trial < trials; trial++ {
		for c := 0; c < n; c++ {
			for r := 0; r < n; r++ {
				m.SetRequest(c, r, true)
			}
		}
		s.Allocate()
		for c := 0; c < n; c++ {
			for r := 0; r < n; r++ {
				if m.Grant(c, r) {
					wins[[2]int{c, r}]++
				}
			}
		}
	}

	expected := float64(trials) / float64(n)
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			got := float64(wins[[2]int{c, r}])
			assert.InDelta(t, expected, got, expected*0.25,
				"client %d resource %d frequency %v too far from uniform %v", c, r, got, expected)
		}
	}
}

func TestSeparable_PanicsOnInvalidIterations(t *testing.T) {
	m := NewMatrix(2, 2)
	require.Panics(t, func() { NewSeparable(m, newArbiters(2), newArbiters(2), 0, false) })
}
