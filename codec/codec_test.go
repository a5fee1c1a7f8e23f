package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name     string    `json:"name"`
	Axes     []uint64  `json:"axes"`
	Checksum uint32    `json:"checksum"`
	At       time.Time `json:"at"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)

	_, err := Lookup("msgpack")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestCodecsInteroperate(t *testing.T) {
	in := entry{Name: "paths/1/0.path", Axes: []uint64{100, 100}, Checksum: 0xdeadbeef, At: time.Unix(1700000000, 0).UTC()}

	for _, enc := range []Codec{JSON{}, GoJSON{}} {
		for _, dec := range []Codec{JSON{}, GoJSON{}} {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(in)
				require.NoError(t, err)

				var out entry
				require.NoError(t, dec.Unmarshal(data, &out))
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestGoJSONMarshalIndent(t *testing.T) {
	data, err := GoJSON{}.MarshalIndent(map[string]int{"version": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"version\": 1\n}", string(data))
}
