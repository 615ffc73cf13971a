package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	cases := []string{"pushtx", "evmtx", "configchange", "evmevmevmevm", "a", "z.....z.....f"}
	for _, s := range cases {
		n, err := StringToName(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, n.String(), "round trip for %q", s)
	}
}

func TestStringToNameRejectsLongInput(t *testing.T) {
	_, err := StringToName("waytoolongofanamehere")
	assert.Error(t, err)
}

func TestStringToNameRejectsInvalidChar(t *testing.T) {
	_, err := StringToName("push!x")
	assert.Error(t, err)
}

func TestMustStringToNamePanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustStringToName("bad!") })
}

func TestHashBytesToHash(t *testing.T) {
	h := BytesToHash([]byte{1, 2, 3})
	assert.False(t, h.IsZero())
	assert.Equal(t, byte(3), h[HashLength-1])
	assert.True(t, Hash{}.IsZero())
}
