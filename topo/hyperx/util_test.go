package hyperx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressRoundTrip(t *testing.T) {
	widths := []int{2, 3, 4}
	total := 1
	for _, w := range widths {
		total *= w
	}
	for id := 0; id < total; id++ {
		addr := IDToAddress(widths, id)
		assert.Equal(t, id, AddressToID(widths, addr))
	}
}

// The three cases below mirror original_source/src/network/hyperx/util_TEST.cc.
func TestMinimalHops_OneDimension(t *testing.T) {
	src := []int{2, 0}
	dst := []int{0, 1}
	assert.Equal(t, 2, MinimalHops(src, dst, 1))
}

func TestMinimalHops_TwoDimensions(t *testing.T) {
	src := []int{0, 0, 0}
	dst := []int{0, 2, 2}
	assert.Equal(t, 3, MinimalHops(src, dst, 2))
}

func TestMinimalHops_ThreeDimensions(t *testing.T) {
	src := []int{0, 1, 0, 0}
	dst := []int{0, 2, 2, 2}
	assert.Equal(t, 4, MinimalHops(src, dst, 3))
}
