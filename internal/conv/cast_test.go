package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	v, err := IntToUint32(42)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), v)

	_, err = IntToUint32(-1)
	assert.Error(t, err)

	if math.MaxInt > math.MaxUint32 {
		big := uint64(math.MaxUint32) + 1
		_, err = IntToUint32(int(big))
		assert.Error(t, err)
	}
}

func TestUint64ToInt(t *testing.T) {
	v, err := Uint64ToInt(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.Error(t, err)
}

func TestMulFits(t *testing.T) {
	assert.True(t, MulFits(0, math.MaxInt))
	assert.True(t, MulFits(1<<20, 4))
	assert.False(t, MulFits(math.MaxInt/2+1, 2))
}
