package pathstore

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/pathstore/internal/arena"
	"github.com/hupe1980/pathstore/persistence"
	"github.com/hupe1980/pathstore/resource"
)

const (
	// MaxDimensionality is the largest dimensionality a path may have.
	MaxDimensionality = persistence.MaxDimensionality

	// MaxCapacityHint bounds the samples Create reserves for one path,
	// summed over all axes. Larger hints are clamped; they are advisory.
	MaxCapacityHint = 1 << 24

	sampleBytes = 4
)

// path is the arena value. charged is what it holds of the memory budget.
type path struct {
	axes    [][]float32
	charged int64
}

func chargeOf(axes [][]float32) int64 {
	var n int64
	for _, a := range axes {
		n += int64(cap(a)) * sampleBytes
	}
	return n
}

// Store owns paths and hands out handles to them.
type Store struct {
	mu       sync.RWMutex
	paths    *arena.Arena[*path]
	reserved int64
	closed   bool

	opts    options
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty store.
func New(optFns ...Option) *Store {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	rc := o.rc
	if rc == nil && (o.rcConfig.MemoryLimitBytes > 0 || o.rcConfig.IOLimitBytesPerSec > 0) {
		cfg := o.rcConfig
		cfg.MaxBackgroundWorkers = int64(o.concurrency)
		rc = resource.NewController(cfg)
	}

	return &Store{
		paths:   arena.New[*path](0),
		opts:    o,
		rc:      rc,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// clampHint applies the capacity hint policy: negative means none and the
// total reservation of a path stays within MaxCapacityHint samples.
func clampHint(dimensionality, hint int) int {
	if hint <= 0 {
		return 0
	}
	return min(hint, MaxCapacityHint/dimensionality)
}

// Create allocates a path with dimensionality empty axes, each with room
// for capacityHint samples.
func (s *Store) Create(dimensionality, capacityHint int) (h Handle, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordCreate(dimensionality, time.Since(start), err)
		s.logger.LogCreate(context.Background(), h, dimensionality, capacityHint, err)
	}()

	if dimensionality < 1 || dimensionality > MaxDimensionality {
		return Handle{}, &DimensionError{Dimensionality: dimensionality}
	}
	hint := clampHint(dimensionality, capacityHint)
	charge := int64(dimensionality) * int64(hint) * sampleBytes

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Handle{}, ErrClosed
	}
	if err := s.rc.TryAcquireMemory(charge); err != nil {
		return Handle{}, translateError(err)
	}

	axes := make([][]float32, dimensionality)
	if hint > 0 {
		for i := range axes {
			axes[i] = make([]float32, 0, hint)
		}
	}
	return s.insertLocked(&path{axes: axes, charged: charge})
}

// insertLocked stores p whose charge is already acquired.
func (s *Store) insertLocked(p *path) (Handle, error) {
	ref, err := s.paths.Insert(p)
	if err != nil {
		s.rc.ReleaseMemory(p.charged)
		return Handle{}, translateError(err)
	}
	s.reserved += p.charged
	return Handle{ref: ref}, nil
}

// insert charges and stores freshly built axes.
func (s *Store) insert(axes [][]float32) (Handle, error) {
	p := &path{axes: axes, charged: chargeOf(axes)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Handle{}, ErrClosed
	}
	if err := s.rc.TryAcquireMemory(p.charged); err != nil {
		return Handle{}, translateError(err)
	}
	return s.insertLocked(p)
}

// lookup must be called with s.mu held.
func (s *Store) lookup(h Handle) (*path, error) {
	if s.closed {
		return nil, ErrClosed
	}
	p, ok := s.paths.Get(h.ref)
	if !ok {
		return nil, invalidHandle(h)
	}
	return p, nil
}

func checkAxis(p *path, axis int) error {
	if axis < 0 || axis >= len(p.axes) {
		return &AxisRangeError{Axis: axis, Dimensionality: len(p.axes)}
	}
	return nil
}

func checkLengths(axes [][]float32) error {
	for i := 1; i < len(axes); i++ {
		if len(axes[i]) != len(axes[0]) {
			return &LengthMismatchError{Axis: i, Len: len(axes[i]), Expected: len(axes[0])}
		}
	}
	return nil
}

// SetAxis replaces the samples of one axis with a copy of samples. The
// existing buffer is reused when it is large enough. On error the axis is
// unchanged.
func (s *Store) SetAxis(h Handle, axis int, samples []float32) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordSetAxis(len(samples), time.Since(start), err)
		s.logger.LogSetAxis(context.Background(), h, axis, len(samples), err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.lookup(h)
	if err != nil {
		return err
	}
	if err := checkAxis(p, axis); err != nil {
		return err
	}

	old := p.axes[axis]
	n := len(samples)
	if n <= cap(old) {
		buf := old[:n]
		copy(buf, samples)
		p.axes[axis] = buf
		return nil
	}

	grow := int64(n) * sampleBytes
	if err := s.rc.TryAcquireMemory(grow); err != nil {
		return translateError(err)
	}
	buf := make([]float32, n)
	copy(buf, samples)

	shrink := int64(cap(old)) * sampleBytes
	s.rc.ReleaseMemory(shrink)
	p.charged += grow - shrink
	s.reserved += grow - shrink
	p.axes[axis] = buf
	return nil
}

// Serialize encodes the path into a new blob. It does not modify the path.
func (s *Store) Serialize(h Handle) (blob []byte, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordSerialize(len(blob), time.Since(start), err)
		s.logger.LogSerialize(context.Background(), h, len(blob), err)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if !s.opts.ragged {
		if err := checkLengths(p.axes); err != nil {
			return nil, err
		}
	}

	blob, err = persistence.Encode(p.axes, persistence.EncodeOptions{Compression: s.opts.compression})
	if err != nil {
		return nil, translateError(err)
	}
	return blob, nil
}

// Deserialize decodes blob into a new path. The new path shares no memory
// with blob.
func (s *Store) Deserialize(blob []byte) (h Handle, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordDeserialize(len(blob), time.Since(start), err)
		s.logger.LogDeserialize(context.Background(), h, len(blob), err)
	}()

	axes, err := persistence.Decode(blob, s.decodeOptions())
	if err != nil {
		return Handle{}, translateError(err)
	}
	if !s.opts.ragged {
		if err := checkLengths(axes); err != nil {
			return Handle{}, err
		}
	}
	return s.insert(axes)
}

// Destroy releases the path and invalidates h.
func (s *Store) Destroy(h Handle) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordDestroy(time.Since(start), err)
		s.logger.LogDestroy(context.Background(), h, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	p, ok := s.paths.Remove(h.ref)
	if !ok {
		return invalidHandle(h)
	}
	s.release(p)
	return nil
}

// decodeOptions charges the decompressed body of a blob to the memory
// budget while it is being decoded.
func (s *Store) decodeOptions() persistence.DecodeOptions {
	return persistence.DecodeOptions{
		Reserve: func(n int) (func(), error) {
			if err := s.rc.TryAcquireMemory(int64(n)); err != nil {
				return nil, err
			}
			return func() { s.rc.ReleaseMemory(int64(n)) }, nil
		},
	}
}

func (s *Store) release(p *path) {
	s.rc.ReleaseMemory(p.charged)
	s.reserved -= p.charged
	p.axes = nil
}

// Dimensionality returns the number of axes of the path.
func (s *Store) Dimensionality(h Handle) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	return len(p.axes), nil
}

// AxisLen returns the number of samples on one axis.
func (s *Store) AxisLen(h Handle, axis int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	if err := checkAxis(p, axis); err != nil {
		return 0, err
	}
	return len(p.axes[axis]), nil
}

// Axis returns a copy of one axis. An empty axis yields an empty,
// non-nil slice.
func (s *Store) Axis(h Handle, axis int) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if err := checkAxis(p, axis); err != nil {
		return nil, err
	}
	out := make([]float32, len(p.axes[axis]))
	copy(out, p.axes[axis])
	return out, nil
}

// AxisItem returns sample i of one axis.
func (s *Store) AxisItem(h Handle, axis, i int) (float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	if err := checkAxis(p, axis); err != nil {
		return 0, err
	}
	a := p.axes[axis]
	if i < 0 || i >= len(a) {
		return 0, &indexError{axis: axis, index: i, len: len(a)}
	}
	return a[i], nil
}

// Clone copies the path behind h into a new, independent path.
func (s *Store) Clone(h Handle) (c Handle, err error) {
	start := time.Now()
	dim := 0
	defer func() {
		s.metrics.RecordCreate(dim, time.Since(start), err)
		s.logger.LogCreate(context.Background(), c, dim, 0, err)
	}()

	s.mu.RLock()
	p, err := s.lookup(h)
	if err != nil {
		s.mu.RUnlock()
		return Handle{}, err
	}
	axes := make([][]float32, len(p.axes))
	for i, a := range p.axes {
		axes[i] = append(make([]float32, 0, len(a)), a...)
	}
	s.mu.RUnlock()

	dim = len(axes)
	return s.insert(axes)
}

// Len returns the number of live paths.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paths.Len()
}

// Handles returns the handles of all live paths in slot order.
func (s *Store) Handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.paths.Refs()
	out := make([]Handle, len(refs))
	for i, r := range refs {
		out[i] = Handle{ref: r}
	}
	return out
}

// MemoryUsage returns the bytes of sample storage the store holds,
// counted by capacity.
func (s *Store) MemoryUsage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reserved
}

// ResourceController returns the controller the store charges, or nil.
func (s *Store) ResourceController() *resource.Controller { return s.rc }

// Close destroys every live path. Later calls on the store return
// ErrClosed; closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for _, r := range s.paths.Refs() {
		if p, ok := s.paths.Remove(r); ok {
			s.release(p)
		}
	}
	s.closed = true
	return nil
}
