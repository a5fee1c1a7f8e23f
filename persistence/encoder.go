package persistence

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/pathstore/internal/compress"
	"github.com/hupe1980/pathstore/internal/conv"
	"github.com/hupe1980/pathstore/internal/hash"
)

// EncodeOptions controls blob encoding.
type EncodeOptions struct {
	Compression Compression
}

// BodySize returns the size of the uncompressed body for axes.
func BodySize(axes [][]float32) int {
	n := 0
	for _, a := range axes {
		n += countSize + len(a)*sampleSize
	}
	return n
}

// Encode serializes axes into a new blob. len(axes) is the dimensionality.
// Sample bits are copied verbatim, so NaN payloads and signed zeros survive.
func Encode(axes [][]float32, opts EncodeOptions) ([]byte, error) {
	dims := len(axes)
	if dims < 1 || dims > MaxDimensionality {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimensionality, dims)
	}
	if !opts.Compression.Valid() {
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownFlags, opts.Compression)
	}

	bodySize := BodySize(axes)
	if opts.Compression != CompressionNone && bodySize > MaxDecodedBodySize {
		return nil, fmt.Errorf("%w: body of %d bytes", ErrTooLarge, bodySize)
	}

	dimsField, err := conv.IntToUint32(dims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDimensionality, err)
	}

	flags := uint16(opts.Compression) & compressionMask
	buf := make([]byte, 0, HeaderSize+bodySize+compress.HeaderSize+TrailerSize)
	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint16(buf, Version)
	buf = binary.LittleEndian.AppendUint16(buf, flags)
	buf = binary.LittleEndian.AppendUint32(buf, dimsField)

	if opts.Compression == CompressionNone {
		buf = appendBody(buf, axes)
	} else {
		body := appendBody(make([]byte, 0, bodySize), axes)
		buf, err = compress.AppendBlock(buf, body, compress.Type(opts.Compression))
		if err != nil {
			return nil, err
		}
	}

	return hash.AppendCRC32C(buf), nil
}

func appendBody(buf []byte, axes [][]float32) []byte {
	for _, axis := range axes {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(axis)))
		for _, v := range axis {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
		}
	}
	return buf
}
