package pathstore

import (
	"fmt"

	"github.com/hupe1980/pathstore/internal/arena"
)

// Handle is an opaque, revocable reference to one path in a Store.
type Handle struct {
	ref arena.Ref
}

// IsZero reports whether h is the zero Handle, which no path ever has.
func (h Handle) IsZero() bool { return h.ref.IsZero() }

// Uint64 packs h into an integer for crossing an opaque boundary.
// The generation occupies the high 32 bits.
func (h Handle) Uint64() uint64 {
	return uint64(h.ref.Gen)<<32 | uint64(h.ref.Index)
}

// HandleFromUint64 reverses Handle.Uint64. Any value is accepted; the store
// rejects the ones that do not address a live path.
func HandleFromUint64(v uint64) Handle {
	return Handle{ref: arena.Ref{Index: uint32(v), Gen: uint32(v >> 32)}}
}

func (h Handle) String() string {
	if h.IsZero() {
		return "path(nil)"
	}
	return fmt.Sprintf("path(%d@%d)", h.ref.Index, h.ref.Gen)
}
