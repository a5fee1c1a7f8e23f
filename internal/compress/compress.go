package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/pathstore/internal/conv"
)

// Type identifies a block compression algorithm.
type Type uint8

const (
	// None stores the body as-is, without a block header.
	None Type = 0
	// LZ4 uses LZ4 block compression.
	LZ4 Type = 1
	// ZSTD uses Zstandard at the default level.
	ZSTD Type = 2
)

// HeaderSize is the size of the block header in bytes.
const HeaderSize = 8

// minRatio is the compressed/raw ratio above which the raw bytes are stored.
const minRatio = 0.9

// lz4MaxExpansion bounds how many raw bytes one LZ4 block byte can produce.
// A match length extension byte adds at most 255.
const lz4MaxExpansion = 255

var (
	// ErrUnknownType is returned for an unsupported compression type.
	ErrUnknownType = errors.New("compress: unknown compression type")
	// ErrCorrupt is returned when a block header or payload is inconsistent.
	ErrCorrupt = errors.New("compress: corrupt block")
	// ErrTooLarge is returned when a block exceeds the caller's size limit.
	ErrTooLarge = errors.New("compress: block too large")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is a known compression type.
func (t Type) Valid() bool {
	return t <= ZSTD
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true), zstd.WithDecoderConcurrency(1))
}

// AppendBlock compresses src with t and appends the resulting block to dst.
func AppendBlock(dst, src []byte, t Type) ([]byte, error) {
	if t == None || !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	var compressed []byte
	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0: incompressible
	case ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		compressed = enc.EncodeAll(src, nil)
		zstdEncoderPool.Put(enc)
	}

	rawLen, err := conv.IntToUint32(len(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	dst = binary.LittleEndian.AppendUint32(dst, rawLen)
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(src))*minRatio {
		dst = binary.LittleEndian.AppendUint32(dst, 0)
		return append(dst, src...), nil
	}
	storedLen, err := conv.IntToUint32(len(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	dst = binary.LittleEndian.AppendUint32(dst, storedLen)
	return append(dst, compressed...), nil
}

// PeekRawSize returns the raw size declared by the block at the start of
// data without decoding it. The size is checked against what the stored
// bytes can plausibly produce, so it is safe to reserve memory for.
func PeekRawSize(data []byte, t Type) (int, error) {
	rawLen, _, err := readHeader(data, t)
	if err != nil {
		return 0, err
	}
	return conv.Uint64ToInt(rawLen)
}

func readHeader(data []byte, t Type) (rawLen, storedLen uint64, err error) {
	if t == None || !t.Valid() {
		return 0, 0, fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	if len(data) < HeaderSize {
		return 0, 0, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}
	rawLen = uint64(binary.LittleEndian.Uint32(data[0:]))
	storedLen = uint64(binary.LittleEndian.Uint32(data[4:]))

	payload := data[HeaderSize:]
	switch {
	case storedLen == 0:
		if uint64(len(payload)) < rawLen {
			return 0, 0, fmt.Errorf("%w: block data too small", ErrCorrupt)
		}
	case uint64(len(payload)) < storedLen:
		return 0, 0, fmt.Errorf("%w: compressed block data too small", ErrCorrupt)
	case t == LZ4 && rawLen > storedLen*lz4MaxExpansion:
		return 0, 0, fmt.Errorf("%w: %d stored bytes cannot expand to %d", ErrCorrupt, storedLen, rawLen)
	case t == ZSTD:
		var hdr zstd.Header
		if err := hdr.Decode(payload[:storedLen]); err != nil {
			return 0, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if hdr.HasFCS && hdr.FrameContentSize != rawLen {
			return 0, 0, fmt.Errorf("%w: frame declares %d bytes, block %d", ErrCorrupt, hdr.FrameContentSize, rawLen)
		}
	}
	return rawLen, storedLen, nil
}

// DecodeBlock decodes the block at the start of data.
// It returns the raw bytes and the number of bytes of data consumed.
// maxRaw bounds the declared raw size. The output buffer is only allocated
// once the header has been checked against the stored payload.
func DecodeBlock(data []byte, t Type, maxRaw int) ([]byte, int, error) {
	rawLen, storedLen, err := readHeader(data, t)
	if err != nil {
		return nil, 0, err
	}
	if rawLen > uint64(maxRaw) {
		return nil, 0, fmt.Errorf("%w: %d > %d", ErrTooLarge, rawLen, maxRaw)
	}

	payload := data[HeaderSize:]
	if storedLen == 0 {
		out := make([]byte, rawLen)
		copy(out, payload)
		return out, HeaderSize + int(rawLen), nil
	}

	compressed := payload[:storedLen]
	out := make([]byte, rawLen)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(compressed, out)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(n) != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, 0, err
		}
		decoded, err := dec.DecodeAll(compressed, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint64(len(decoded)) != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		out = decoded
	}

	return out, HeaderSize + int(storedLen), nil
}
