// Package alloc implements the iSLIP-class separable allocator: a two-phase
// matcher across N clients and M resources, built from index-addressed
// matrices and a pluggable Arbiter contract (spec §4.4).
package alloc

// Matrix is an index-addressed NumClients x NumResources bit/word grid.
// Deliberately index-based rather than the teacher source's raw
// pointer-to-bool arrays (spec §9's re-architecture note): callers address
// cells with (client, resource) pairs, never raw memory.
type Matrix struct {
	NumClients   int
	NumResources int
	request      []bool
	metadata     []uint64
	grant        []bool
}

// NewMatrix allocates a zeroed matrix for the given dimensions.
func NewMatrix(numClients, numResources int) *Matrix {
	n := numClients * numResources
	return &Matrix{
		NumClients:   numClients,
		NumResources: numResources,
		request:      make([]bool, n),
		metadata:     make([]uint64, n),
		grant:        make([]bool, n),
	}
}

func (m *Matrix) index(client, resource int) int {
	return client*m.NumResources + resource
}

// SetRequest sets or clears the request bit for (client, resource).
func (m *Matrix) SetRequest(client, resource int, v bool) {
	m.request[m.index(client, resource)] = v
}

// Request returns the request bit for (client, resource).
func (m *Matrix) Request(client, resource int) bool {
	return m.request[m.index(client, resource)]
}

// SetMetadata sets the metadata word for (client, resource); arbiters may
// use this (e.g. candidate congestion) but the allocator core never
// interprets it.
func (m *Matrix) SetMetadata(client, resource int, v uint64) {
	m.metadata[m.index(client, resource)] = v
}

// Metadata returns the metadata word for (client, resource).
func (m *Matrix) Metadata(client, resource int) uint64 {
	return m.metadata[m.index(client, resource)]
}

// ClearRequestRow clears every request bit for the given client.
func (m *Matrix) ClearRequestRow(client int) {
	for r := 0; r < m.NumResources; r++ {
		m.request[m.index(client, r)] = false
	}
}

// ClearRequestColumn clears every request bit for the given resource.
func (m *Matrix) ClearRequestColumn(resource int) {
	for c := 0; c < m.NumClients; c++ {
		m.request[m.index(c, resource)] = false
	}
}

// setGrant sets the grant bit for (client, resource). Unexported: grants are
// only ever written by Separable.Allocate.
func (m *Matrix) setGrant(client, resource int, v bool) {
	m.grant[m.index(client, resource)] = v
}

// Grant returns the grant bit for (client, resource).
func (m *Matrix) Grant(client, resource int) bool {
	return m.grant[m.index(client, resource)]
}

// clearGrants zeroes the entire grant matrix; called at the start of each
// Allocate.
func (m *Matrix) clearGrants() {
	for i := range m.grant {
		m.grant[i] = false
	}
}

// IsMatching reports whether the grant matrix has at most one set bit per
// row and per column (spec §8 testable property).
func (m *Matrix) IsMatching() bool {
	for c := 0; c < m.NumClients; c++ {
		count := 0
		for r := 0; r < m.NumResources; r++ {
			if m.grant[m.index(c, r)] {
				count++
			}
		}
		if count > 1 {
			return false
		}
	}
	for r := 0; r < m.NumResources; r++ {
		count := 0
		for c := 0; c < m.NumClients; c++ {
			if m.grant[m.index(c, r)] {
				count++
			}
		}
		if count > 1 {
			return false
		}
	}
	return true
}
