package hash

import (
	"encoding/binary"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Size is the encoded size of a CRC32C trailer in bytes.
const Size = 4

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new streaming CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// AppendCRC32C appends the little-endian checksum of buf to buf.
func AppendCRC32C(buf []byte) []byte {
	return binary.LittleEndian.AppendUint32(buf, CRC32C(buf))
}

// SplitCRC32C separates a buffer produced by AppendCRC32C into its payload
// and stored checksum. ok is false if data is too short to carry a trailer.
func SplitCRC32C(data []byte) (payload []byte, sum uint32, ok bool) {
	if len(data) < Size {
		return nil, 0, false
	}
	n := len(data) - Size
	return data[:n], binary.LittleEndian.Uint32(data[n:]), true
}
