// Package butterfly implements address translation, minimal-hop
// computation, and a network builder for a k-ary butterfly topology: a
// multistage network where the radix and stage count are caller-configured.
//
// Grounded directly on original_source/src/network/butterfly/util.cc,
// translated from (u32 exp, u32 row) digit loops to an idiomatic Go
// slice-based implementation; the numeric formulas are unchanged.
package butterfly

// InterfaceIDToAddress converts an interface id to its base-radix address
// vector of length numStages, most significant digit first (addr[0] is the
// digit stage 0 routes on).
func InterfaceIDToAddress(radix, numStages, id int) []int {
	addr := make([]int, numStages)
	for exp, row := 0, numStages-1; exp < numStages; exp, row = exp+1, row-1 {
		divisor := pow(radix, row)
		addr[exp] = id / divisor
		id %= divisor
	}
	return addr
}

// InterfaceAddressToID is the inverse of InterfaceIDToAddress.
func InterfaceAddressToID(radix, numStages int, addr []int) int {
	sum := 0
	p := 1
	for stage := 0; stage < numStages; stage++ {
		index := numStages - 1 - stage
		sum += addr[index] * p
		p *= radix
	}
	return sum
}

// RouterIDToAddress converts a router id to its (stage, column) address.
func RouterIDToAddress(stageWidth, id int) []int {
	return []int{id / stageWidth, id % stageWidth}
}

// RouterAddressToID is the inverse of RouterIDToAddress.
func RouterAddressToID(stageWidth int, addr []int) int {
	return addr[0]*stageWidth + addr[1]
}

// MinimalHops returns the fixed hop count across a numStages-stage
// butterfly: numStages-1 internal hops plus 2 for injection/ejection.
func MinimalHops(numStages int) int {
	return numStages - 1 + 2
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
