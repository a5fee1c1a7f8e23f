package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRC32C_KnownVector(t *testing.T) {
	// RFC 3720 B.4: 32 bytes of zeros.
	assert.Equal(t, uint32(0x8a9136aa), CRC32C(make([]byte, 32)))
}

func TestAppendSplit(t *testing.T) {
	payload := []byte("path blob payload")
	sealed := AppendCRC32C(append([]byte(nil), payload...))
	require.Len(t, sealed, len(payload)+Size)

	got, sum, ok := SplitCRC32C(sealed)
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.Equal(t, CRC32C(payload), sum)

	_, _, ok = SplitCRC32C([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestStreamingMatchesOneShot(t *testing.T) {
	h := NewCRC32C()
	_, _ = h.Write([]byte("abc"))
	_, _ = h.Write([]byte("def"))
	assert.Equal(t, CRC32C([]byte("abcdef")), h.Sum32())
}
