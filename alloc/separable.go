package alloc

// Separable is a two-phase request-grant matcher across N clients and M
// resources (spec §4.4). Client-side arbiters pick a resource per client;
// resource-side arbiters pick one winner per resource. Configured with an
// iteration count and a latch policy (always / iSLIP).
//
// Grounded on original_source/src/allocator/CrSeparableAllocator.cc's
// allocate(), translated from raw pointer arrays to an index-addressed
// Matrix (spec §9) and corrected for the shadowed-`r` loop variable bug
// also called out in spec §9: this implementation uses distinct loop
// variables for "clear the winner's row" (iterates resources) and "clear
// resource r's column" (iterates clients), so it can never accidentally
// conflate the two.
type Separable struct {
	matrix           *Matrix
	clientArbiters   []Arbiter
	resourceArbiters []Arbiter
	iterations       int
	slipLatch        bool // false = latch-always, true = iSLIP
	intermediate     []bool
}

// NewSeparable builds a separable allocator over matrix using the given
// per-client and per-resource arbiters (len must match matrix dimensions).
// iterations must be >= 1.
func NewSeparable(matrix *Matrix, clientArbiters, resourceArbiters []Arbiter, iterations int, slipLatch bool) *Separable {
	if iterations < 1 {
		panic("alloc: iterations must be >= 1")
	}
	if len(clientArbiters) != matrix.NumClients {
		panic("alloc: clientArbiters length must match matrix.NumClients")
	}
	if len(resourceArbiters) != matrix.NumResources {
		panic("alloc: resourceArbiters length must match matrix.NumResources")
	}
	return &Separable{
		matrix:           matrix,
		clientArbiters:   clientArbiters,
		resourceArbiters: resourceArbiters,
		iterations:       iterations,
		slipLatch:        slipLatch,
		intermediate:     make([]bool, matrix.NumClients*matrix.NumResources),
	}
}

// Matrix returns the underlying request/grant matrix.
func (s *Separable) Matrix() *Matrix { return s.matrix }

// Allocate runs the configured number of request-grant iterations and
// leaves the result in Matrix().Grant. Postconditions (spec §8): Grant is a
// matching, and Grant's set bits are a subset of the Request bits observed
// before this call.
func (s *Separable) Allocate() {
	m := s.matrix
	m.clearGrants()

	for iter := 0; iter < s.iterations; iter++ {
		// 1. zero the intermediate matrix
		for i := range s.intermediate {
			s.intermediate[i] = false
		}

		// 2. request phase: each client arbitrates over its M resources
		clientRequests := make([]bool, m.NumResources)
		for c := 0; c < m.NumClients; c++ {
			for r := 0; r < m.NumResources; r++ {
				clientRequests[r] = m.Request(c, r)
			}
			winner := s.clientArbiters[c].Arbitrate(clientRequests)
			if winner != NoWinner {
				s.intermediate[m.index(c, winner)] = true
			}
			if !s.slipLatch {
				s.clientArbiters[c].Latch()
			}
		}

		// 3. grant phase: each resource arbitrates over its N clients
		resourceRequests := make([]bool, m.NumClients)
		for r := 0; r < m.NumResources; r++ {
			for c := 0; c < m.NumClients; c++ {
				resourceRequests[c] = s.intermediate[m.index(c, r)]
			}
			winningClient := s.resourceArbiters[r].Arbitrate(resourceRequests)

			if winningClient != NoWinner {
				m.setGrant(winningClient, r, true)
				// the winner cannot be rematched in a later iteration
				m.ClearRequestRow(winningClient)
				// the resource cannot be reassigned in a later iteration
				m.ClearRequestColumn(r)
			}

			if s.slipLatch {
				if winningClient != NoWinner {
					s.resourceArbiters[r].Latch()
					s.clientArbiters[winningClient].Latch()
				}
			} else {
				s.resourceArbiters[r].Latch()
			}
		}
	}
}
