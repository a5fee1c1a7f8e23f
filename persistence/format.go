package persistence

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pathstore/internal/compress"
)

const (
	// Magic identifies a path blob (ASCII "PATH" on disk).
	Magic uint32 = 0x48544150
	// Version is the current format version.
	Version uint16 = 1

	// HeaderSize is the size of the fixed header in bytes.
	HeaderSize = 12
	// TrailerSize is the size of the checksum trailer in bytes.
	TrailerSize = 4

	// MaxDimensionality is the largest dimensionality a blob may declare.
	MaxDimensionality = 1<<16 - 1

	// MaxDecodedBodySize bounds the declared size of a compressed body.
	MaxDecodedBodySize = 1 << 30

	countSize  = 8
	sampleSize = 4

	compressionMask uint16 = 0x0003
)

// Compression selects how the blob body is stored.
type Compression uint8

const (
	// CompressionNone stores samples verbatim.
	CompressionNone Compression = Compression(compress.None)
	// CompressionLZ4 favors encode/decode speed.
	CompressionLZ4 Compression = Compression(compress.LZ4)
	// CompressionZSTD favors ratio.
	CompressionZSTD Compression = Compression(compress.ZSTD)
)

func (c Compression) String() string {
	return compress.Type(c).String()
}

// Valid reports whether c is a known compression.
func (c Compression) Valid() bool {
	return compress.Type(c).Valid()
}

var (
	// ErrMalformed matches every decoding failure.
	ErrMalformed = errors.New("malformed path blob")

	ErrInvalidMagic          = errors.New("invalid magic number")
	ErrUnsupportedVersion    = errors.New("unsupported version")
	ErrUnknownFlags          = errors.New("unknown flags")
	ErrInvalidDimensionality = errors.New("invalid dimensionality")
	ErrTruncated             = errors.New("truncated blob")
	ErrCountMismatch         = errors.New("sample count exceeds remaining bytes")
	ErrTrailingData          = errors.New("trailing data after last axis")
	ErrCorruptBody           = errors.New("corrupt compressed body")

	// ErrTooLarge is returned by Encode when a path cannot be represented.
	ErrTooLarge = errors.New("path too large to encode")
)

// FormatError describes where decoding failed.
// It matches both ErrMalformed and its specific cause.
type FormatError struct {
	Err    error
	Offset int
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s at offset %d", ErrMalformed, e.Err, e.Offset)
	}
	return fmt.Sprintf("%s: %s at offset %d: %s", ErrMalformed, e.Err, e.Offset, e.Detail)
}

func (e *FormatError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

func malformed(err error, offset int, format string, args ...any) error {
	return &FormatError{Err: err, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}

// ChecksumMismatchError is returned when the CRC32-C trailer does not match.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s: checksum mismatch: expected 0x%08x, got 0x%08x", ErrMalformed, e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return ErrMalformed }

// IsChecksumMismatch reports whether err is a checksum mismatch.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}

// Info describes a blob without its samples.
type Info struct {
	Version        uint16
	Compression    Compression
	Dimensionality int
	Counts         []uint64
	// Size is the encoded size in bytes.
	Size int
	// Checksum is the stored CRC32-C trailer.
	Checksum uint32
}

// Ragged reports whether the axes declare different sample counts.
func (i *Info) Ragged() bool {
	for _, c := range i.Counts[1:] {
		if c != i.Counts[0] {
			return true
		}
	}
	return false
}
