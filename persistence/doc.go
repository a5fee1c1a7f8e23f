// Package persistence implements the binary blob format of a path.
//
// # Layout (version 1, little-endian)
//
//	offset  size  field
//	0       4     magic            0x48544150 ("PATH")
//	4       2     version          1
//	6       2     flags            bits 0-1: compression (0 none, 1 LZ4, 2 ZSTD)
//	8       4     dimensionality   >= 1
//	12      ...   body
//	n-4     4     CRC32-C of bytes [0, n-4)
//
// The uncompressed body holds, for every axis, a uint64 sample count
// followed by that many IEEE-754 float32 values. A compressed body is a
// single block as produced by internal/compress and must decode to exactly
// that layout.
//
// The format is frozen: any change requires a new version number.
//
// Decoding never reads past the input and never trusts a declared count
// before checking it against the bytes actually present. Every decoding
// failure matches ErrMalformed.
package persistence
