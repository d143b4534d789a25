package alloc

// NoWinner is returned by Arbiter.Arbitrate when no input requested.
const NoWinner = -1

// Arbiter picks at most one enabled input out of numInputs candidates per
// Arbitrate call. Latch advances the internal pointer past the last grant
// (spec §4.4: "the latch() call advances the internal pointer past the last
// grant"). Implementations are pluggable: round-robin is the default; other
// variants (weighted, random priority) are permitted as long as they honor
// this contract.
type Arbiter interface {
	// Arbitrate returns the index of the granted input, or NoWinner if
	// requests (all false) contains no enabled input.
	Arbitrate(requests []bool) int
	// Latch advances the arbiter's round-robin pointer past the last
	// granted input. Safe to call even if the last Arbitrate call returned
	// NoWinner (no-op in that case for RoundRobinArbiter).
	Latch()
}

// RoundRobinArbiter is the default Arbiter: grants the lowest-index enabled
// request at or after the current pointer, wrapping around.
type RoundRobinArbiter struct {
	pointer    int
	lastWinner int
}

// NewRoundRobinArbiter returns an arbiter whose pointer starts at 0.
func NewRoundRobinArbiter(numInputs int) *RoundRobinArbiter {
	return &RoundRobinArbiter{pointer: 0, lastWinner: NoWinner}
}

// NewRoundRobinArbiterAt returns an arbiter whose pointer starts at start.
// Separable allocators seed each client arbiter c and each resource
// arbiter r with start==its own index, the conventional iSLIP
// initialization that makes a fully-requested matrix converge to a
// permutation in a single iteration instead of every arbiter racing for
// the same lowest-index input.
func NewRoundRobinArbiterAt(numInputs, start int) *RoundRobinArbiter {
	return &RoundRobinArbiter{pointer: start % numInputs, lastWinner: NoWinner}
}

// Arbitrate implements Arbiter.
func (a *RoundRobinArbiter) Arbitrate(requests []bool) int {
	n := len(requests)
	for i := 0; i < n; i++ {
		idx := (a.pointer + i) % n
		if requests[idx] {
			a.lastWinner = idx
			return idx
		}
	}
	a.lastWinner = NoWinner
	return NoWinner
}

// Latch advances the pointer to just past the last winner.
func (a *RoundRobinArbiter) Latch() {
	if a.lastWinner == NoWinner {
		return
	}
	// pointer length is rediscovered at the next Arbitrate call via modulo;
	// storing (lastWinner+1) is sufficient since Arbitrate takes the modulo
	// against the caller-supplied requests length each time.
	a.pointer = a.lastWinner + 1
}
