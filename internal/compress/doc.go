// Package compress implements the optional block compression applied to the
// body of a path blob.
//
// A block is laid out as:
//
//	[rawLen uint32][storedLen uint32][stored bytes...]
//
// storedLen == 0 means the block carries rawLen uncompressed bytes because
// compression did not pay off. LZ4 favors speed, ZSTD favors ratio.
package compress
