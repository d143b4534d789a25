package butterfly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterfaceAddressRoundTrip(t *testing.T) {
	const radix, stages = 4, 3
	total := pow(radix, stages)
	for id := 0; id < total; id++ {
		addr := InterfaceIDToAddress(radix, stages, id)
		assert.Equal(t, id, InterfaceAddressToID(radix, stages, addr))
	}
}

func TestRouterAddressRoundTrip(t *testing.T) {
	const stageWidth = 16
	for id := 0; id < 64; id++ {
		addr := RouterIDToAddress(stageWidth, id)
		assert.Equal(t, id, RouterAddressToID(stageWidth, addr))
	}
}

func TestMinimalHops(t *testing.T) {
	assert.Equal(t, 4, MinimalHops(3))
}
