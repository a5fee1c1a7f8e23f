package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG wraps a seeded generator. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillUniform fills dst with random values in range [0, 1).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// Axes returns dim axes of n uniform samples each.
func (r *RNG) Axes(dim, n int) [][]float32 {
	axes := make([][]float32, dim)
	for i := range axes {
		axes[i] = make([]float32, n)
		r.FillUniform(axes[i])
	}
	return axes
}

// RaggedAxes returns dim axes whose lengths are drawn from [0, maxLen].
func (r *RNG) RaggedAxes(dim, maxLen int) [][]float32 {
	axes := make([][]float32, dim)
	for i := range axes {
		axes[i] = make([]float32, r.Intn(maxLen+1))
		r.FillUniform(axes[i])
	}
	return axes
}

// Ramp returns n samples i*step for i in [0, n).
func Ramp(n int, step float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) * step
	}
	return out
}

// Smooth returns n samples of a slowly varying signal, the kind of data
// that compresses well once its low mantissa bits are zeroed.
func Smooth(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		v := float32(math.Round(100*math.Sin(float64(i)/64))) / 4
		out[i] = v
	}
	return out
}

// SpecialValues returns samples that must survive a round trip bit for
// bit: signed zeros, infinities, a NaN and the float32 extremes.
func SpecialValues() []float32 {
	return []float32{
		0,
		float32(math.Copysign(0, -1)),
		float32(math.Inf(1)),
		float32(math.Inf(-1)),
		float32(math.NaN()),
		math.MaxFloat32,
		math.SmallestNonzeroFloat32,
		-math.MaxFloat32,
	}
}

// Bits returns the IEEE-754 bit patterns of samples, for comparing values
// that include NaN.
func Bits(samples []float32) []uint32 {
	out := make([]uint32, len(samples))
	for i, v := range samples {
		out[i] = math.Float32bits(v)
	}
	return out
}
