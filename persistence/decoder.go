package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/pathstore/internal/compress"
	"github.com/hupe1980/pathstore/internal/conv"
	"github.com/hupe1980/pathstore/internal/hash"
)

// DecodeOptions controls blob decoding.
type DecodeOptions struct {
	// Reserve is called with the declared size of a compressed body before
	// the body is allocated. A non-nil error aborts decoding. The returned
	// release runs once the decoded body is no longer referenced.
	Reserve func(n int) (release func(), err error)
}

// Decode parses a blob and returns freshly allocated axes.
// The result never aliases data.
func Decode(data []byte, opts DecodeOptions) ([][]float32, error) {
	_, axes, err := parse(data, opts, true)
	return axes, err
}

// Inspect validates a blob and describes it without materializing samples.
func Inspect(data []byte, opts DecodeOptions) (*Info, error) {
	info, _, err := parse(data, opts, false)
	return info, err
}

func parse(data []byte, opts DecodeOptions, materialize bool) (*Info, [][]float32, error) {
	if len(data) < HeaderSize+TrailerSize {
		return nil, nil, malformed(ErrTruncated, 0, "%d bytes, need at least %d", len(data), HeaderSize+TrailerSize)
	}

	magic := binary.LittleEndian.Uint32(data[0:])
	if magic != Magic {
		return nil, nil, malformed(ErrInvalidMagic, 0, "got 0x%08x", magic)
	}
	version := binary.LittleEndian.Uint16(data[4:])
	if version != Version {
		return nil, nil, malformed(ErrUnsupportedVersion, 4, "got %d", version)
	}
	flags := binary.LittleEndian.Uint16(data[6:])
	comp := Compression(flags & compressionMask)
	if flags&^compressionMask != 0 || !comp.Valid() {
		return nil, nil, malformed(ErrUnknownFlags, 6, "got 0x%04x", flags)
	}
	dims := binary.LittleEndian.Uint32(data[8:])
	if dims == 0 || dims > MaxDimensionality {
		return nil, nil, malformed(ErrInvalidDimensionality, 8, "got %d", dims)
	}

	payload, stored, _ := hash.SplitCRC32C(data)
	if actual := hash.CRC32C(payload); actual != stored {
		return nil, nil, &ChecksumMismatchError{Expected: stored, Actual: actual}
	}

	body := payload[HeaderSize:]
	if comp != CompressionNone {
		size, err := compress.PeekRawSize(body, compress.Type(comp))
		if err != nil {
			return nil, nil, malformed(ErrCorruptBody, HeaderSize, "%v", err)
		}
		if size > MaxDecodedBodySize {
			return nil, nil, malformed(ErrTooLarge, HeaderSize, "body of %d bytes", size)
		}
		if opts.Reserve != nil {
			release, err := opts.Reserve(size)
			if err != nil {
				return nil, nil, fmt.Errorf("reserve %d bytes for body: %w", size, err)
			}
			defer release()
		}

		raw, n, err := compress.DecodeBlock(body, compress.Type(comp), MaxDecodedBodySize)
		if err != nil {
			if errors.Is(err, compress.ErrTooLarge) {
				return nil, nil, malformed(ErrTooLarge, HeaderSize, "%v", err)
			}
			return nil, nil, malformed(ErrCorruptBody, HeaderSize, "%v", err)
		}
		if n != len(body) {
			return nil, nil, malformed(ErrTrailingData, HeaderSize+n, "%d bytes after compressed block", len(body)-n)
		}
		body = raw
	}

	// Every axis needs at least its count field.
	if uint64(dims) > uint64(len(body))/countSize {
		return nil, nil, malformed(ErrTruncated, HeaderSize, "%d axes do not fit in %d body bytes", dims, len(body))
	}

	dimensionality, err := conv.Uint32ToInt(dims)
	if err != nil {
		return nil, nil, malformed(ErrInvalidDimensionality, 8, "%v", err)
	}
	info := &Info{
		Version:        version,
		Compression:    comp,
		Dimensionality: dimensionality,
		Counts:         make([]uint64, dims),
		Size:           len(data),
		Checksum:       stored,
	}
	var axes [][]float32
	if materialize {
		axes = make([][]float32, dims)
	}

	off := 0
	for i := range info.Counts {
		if len(body)-off < countSize {
			return nil, nil, malformed(ErrTruncated, off, "axis %d count", i)
		}
		count := binary.LittleEndian.Uint64(body[off:])
		off += countSize

		remaining := len(body) - off
		n, err := conv.Uint64ToInt(count)
		if err != nil || !conv.MulFits(n, sampleSize) || n*sampleSize > remaining {
			return nil, nil, malformed(ErrCountMismatch, off-countSize, "axis %d declares %d samples, %d bytes remain", i, count, remaining)
		}
		info.Counts[i] = count

		if materialize {
			axis := make([]float32, n)
			for j := range axis {
				axis[j] = math.Float32frombits(binary.LittleEndian.Uint32(body[off+j*sampleSize:]))
			}
			axes[i] = axis
		}
		off += n * sampleSize
	}

	if off != len(body) {
		return nil, nil, malformed(ErrTrailingData, off, "%d bytes after axis %d", len(body)-off, dims-1)
	}
	return info, axes, nil
}
