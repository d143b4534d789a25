// Package foldedclos implements address translation and minimal-hop
// computation for a folded-Clos (fat-tree) topology of configurable
// half-radix and level count.
//
// Grounded directly on original_source/src/network/foldedclos/util.cc.
package foldedclos

// InterfaceIDToAddress converts an interface id to its little-endian
// base-halfRadix address vector of length numLevels.
func InterfaceIDToAddress(halfRadix, numLevels, id int) []int {
	addr := make([]int, numLevels)
	for exp, row := 0, numLevels-1; exp < numLevels; exp, row = exp+1, row-1 {
		divisor := pow(halfRadix, row)
		addr[row] = id / divisor
		id %= divisor
	}
	return addr
}

// InterfaceAddressToID is the inverse of InterfaceIDToAddress.
func InterfaceAddressToID(halfRadix, numLevels int, addr []int) int {
	sum := 0
	for exp, row := 0, numLevels-1; exp < numLevels; exp, row = exp+1, row-1 {
		multiplier := pow(halfRadix, row)
		sum += addr[row] * multiplier
	}
	return sum
}

// RouterIDToAddress converts a router id to its (level, row-index) address.
func RouterIDToAddress(rowRouters, id int) []int {
	return []int{id / rowRouters, id % rowRouters}
}

// RouterAddressToID is the inverse of RouterIDToAddress.
func RouterAddressToID(rowRouters int, addr []int) int {
	return addr[0]*rowRouters + addr[1]
}

// MinimalHops returns the number of router hops a minimal-routed packet
// takes between source and destination addresses (each numLevels long):
// the packet climbs to the lowest common ancestor level and back down.
func MinimalHops(source, destination []int, numLevels int) int {
	travLevels := numLevels
	for ; travLevels > 0; travLevels-- {
		if source[travLevels-1] != destination[travLevels-1] || travLevels == 1 {
			break
		}
	}
	return travLevels*2 - 1
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
