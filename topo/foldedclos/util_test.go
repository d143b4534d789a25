package foldedclos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterfaceAddressRoundTrip(t *testing.T) {
	const halfRadix, levels = 3, 2
	total := pow(halfRadix, levels)
	for id := 0; id < total; id++ {
		addr := InterfaceIDToAddress(halfRadix, levels, id)
		assert.Equal(t, id, InterfaceAddressToID(halfRadix, levels, addr))
	}
}

func TestRouterAddressRoundTrip(t *testing.T) {
	const rowRouters = 8
	for id := 0; id < 32; id++ {
		addr := RouterIDToAddress(rowRouters, id)
		assert.Equal(t, id, RouterAddressToID(rowRouters, addr))
	}
}

func TestMinimalHops_SameLeafRouter(t *testing.T) {
	src := []int{0, 3}
	dst := []int{5, 3}
	assert.Equal(t, 1, MinimalHops(src, dst, 2))
}

func TestMinimalHops_DifferentLeafRouters(t *testing.T) {
	src := []int{0, 2}
	dst := []int{5, 7}
	assert.Equal(t, 3, MinimalHops(src, dst, 2))
}
