package arena

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrExhausted is returned when no slot index is left.
var ErrExhausted = errors.New("arena: slots exhausted")

// MaxSlots is the maximum number of slots an arena can address.
const MaxSlots = math.MaxUint32

// Ref is a generation-tagged reference to an arena slot.
type Ref struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether r is the zero (never valid) Ref.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("Ref(%d@%d)", r.Index, r.Gen)
}

type slot[T any] struct {
	gen     uint32
	live    bool
	retired bool
	val     T
}

// Stats describes slot usage.
type Stats struct {
	Live    int // slots holding a value
	Slots   int // slots ever allocated
	Free    int // slots waiting for reuse
	Retired int // slots whose generation space is used up
}

// Arena stores values of type T behind generation-tagged references.
type Arena[T any] struct {
	slots   []slot[T]
	free    []uint32
	live    *roaring.Bitmap
	retired int
	limit   uint64
}

// New creates an arena with room for capacity slots before growing.
func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{
		slots: make([]slot[T], 0, capacity),
		live:  roaring.New(),
		limit: MaxSlots,
	}
}

// Insert stores v in a free slot and returns its reference.
func (a *Arena[T]) Insert(v T) (Ref, error) {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		if uint64(len(a.slots)) >= a.limit {
			return Ref{}, ErrExhausted
		}
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{gen: 1})
	}

	s := &a.slots[idx]
	s.live = true
	s.val = v
	a.live.Add(idx)
	return Ref{Index: idx, Gen: s.gen}, nil
}

func (a *Arena[T]) lookup(r Ref) (*slot[T], bool) {
	if r.IsZero() || uint64(r.Index) >= uint64(len(a.slots)) {
		return nil, false
	}
	s := &a.slots[r.Index]
	if !s.live || s.gen != r.Gen {
		return nil, false
	}
	return s, true
}

// Get returns the value behind r, or false if r is zero or stale.
func (a *Arena[T]) Get(r Ref) (T, bool) {
	s, ok := a.lookup(r)
	if !ok {
		var zero T
		return zero, false
	}
	return s.val, true
}

// Remove deletes the value behind r and invalidates r.
// It returns the removed value, or false if r was already invalid.
func (a *Arena[T]) Remove(r Ref) (T, bool) {
	var zero T
	s, ok := a.lookup(r)
	if !ok {
		return zero, false
	}

	v := s.val
	s.val = zero
	s.live = false
	a.live.Remove(r.Index)

	if s.gen == math.MaxUint32 {
		s.retired = true
		a.retired++
		return v, true
	}
	s.gen++
	a.free = append(a.free, r.Index)
	return v, true
}

// Len returns the number of live values.
func (a *Arena[T]) Len() int {
	return int(a.live.GetCardinality())
}

// Range calls fn for every live value in ascending slot order until fn
// returns false. fn must not insert into or remove from the arena.
func (a *Arena[T]) Range(fn func(Ref, T) bool) {
	it := a.live.Iterator()
	for it.HasNext() {
		idx := it.Next()
		s := &a.slots[idx]
		if !fn(Ref{Index: idx, Gen: s.gen}, s.val) {
			return
		}
	}
}

// Refs returns the references of all live values in ascending slot order.
func (a *Arena[T]) Refs() []Ref {
	refs := make([]Ref, 0, a.Len())
	a.Range(func(r Ref, _ T) bool {
		refs = append(refs, r)
		return true
	})
	return refs
}

// Stats returns slot usage counters.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Live:    a.Len(),
		Slots:   len(a.slots),
		Free:    len(a.free),
		Retired: a.retired,
	}
}
