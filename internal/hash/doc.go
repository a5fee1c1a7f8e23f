// Package hash provides the CRC32-Castagnoli checksum used to seal path
// blobs and to validate uploads.
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension).
// It detects accidental corruption only; it is not a cryptographic MAC.
//
// One-shot:
//
//	sealed := hash.AppendCRC32C(payload)
//	payload, sum, ok := hash.SplitCRC32C(sealed)
//
// Streaming:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
