package pathstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pathstore/internal/arena"
	"github.com/hupe1980/pathstore/internal/manifest"
	"github.com/hupe1980/pathstore/persistence"
	"github.com/hupe1980/pathstore/resource"
)

var (
	// ErrInvalidDimension is returned by Create for a dimensionality outside
	// [1, MaxDimensionality].
	ErrInvalidDimension = errors.New("invalid dimensionality")

	// ErrInvalidHandle is returned for the zero handle and for handles whose
	// path was destroyed.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrAxisOutOfRange is returned for an axis index outside
	// [0, dimensionality).
	ErrAxisOutOfRange = errors.New("axis out of range")

	// ErrMalformedData is returned when a blob cannot be decoded.
	ErrMalformedData = errors.New("malformed data")

	// ErrAllocationFailure is returned when the memory budget cannot cover
	// a request.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrAxisLengthMismatch is returned when a path with axes of different
	// lengths is serialized or deserialized without WithRaggedAxes.
	ErrAxisLengthMismatch = errors.New("axis length mismatch")

	// ErrIndexOutOfRange is returned by AxisItem for a sample index outside
	// the axis.
	ErrIndexOutOfRange = errors.New("sample index out of range")

	// ErrSnapshotCommitted is returned by DeleteSnapshot for the committed
	// snapshot version.
	ErrSnapshotCommitted = errors.New("snapshot is committed")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store closed")
)

// DimensionError reports a rejected dimensionality.
type DimensionError struct {
	Dimensionality int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %d (must be between 1 and %d)", ErrInvalidDimension, e.Dimensionality, MaxDimensionality)
}

func (e *DimensionError) Unwrap() error { return ErrInvalidDimension }

// AxisRangeError reports an axis index outside the path.
type AxisRangeError struct {
	Axis           int
	Dimensionality int
}

func (e *AxisRangeError) Error() string {
	return fmt.Sprintf("%s: axis %d of %d", ErrAxisOutOfRange, e.Axis, e.Dimensionality)
}

func (e *AxisRangeError) Unwrap() error { return ErrAxisOutOfRange }

// LengthMismatchError reports the first axis whose length differs from
// axis 0.
type LengthMismatchError struct {
	Axis     int
	Len      int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: axis %d has %d samples, axis 0 has %d", ErrAxisLengthMismatch, e.Axis, e.Len, e.Expected)
}

func (e *LengthMismatchError) Unwrap() error { return ErrAxisLengthMismatch }

func invalidHandle(h Handle) error {
	return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
}

// translateError maps errors of internal packages onto the public
// sentinels while keeping the cause reachable.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, persistence.ErrMalformed),
		errors.Is(err, manifest.ErrCorrupt),
		errors.Is(err, manifest.ErrIncompatibleVersion):
		return fmt.Errorf("%w: %w", ErrMalformedData, err)
	case errors.Is(err, manifest.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	case errors.Is(err, manifest.ErrCurrentVersion):
		return fmt.Errorf("%w: %w", ErrSnapshotCommitted, err)
	case errors.Is(err, resource.ErrMemoryLimitExceeded),
		errors.Is(err, arena.ErrExhausted),
		errors.Is(err, persistence.ErrTooLarge):
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	return err
}

type indexError struct {
	axis, index, len int
}

func (e *indexError) Error() string {
	return fmt.Sprintf("%s: index %d on axis %d with %d samples", ErrIndexOutOfRange, e.index, e.axis, e.len)
}

func (e *indexError) Unwrap() error { return ErrIndexOutOfRange }
