// Package pathstore keeps paths, fixed-dimensionality bundles of float32
// sample sequences, behind revocable handles and converts them to and from
// a compact, checksummed binary blob.
//
// # Quick Start
//
//	s := pathstore.New()
//	defer s.Close()
//
//	h, _ := s.Create(2, 100)
//	_ = s.SetAxis(h, 0, xs)
//	_ = s.SetAxis(h, 1, ys)
//
//	blob, _ := s.Serialize(h)
//	h2, _ := s.Deserialize(blob)
//
//	_ = s.Destroy(h)
//	_ = s.Destroy(h2)
//
// # Handles
//
// A Handle is an (index, generation) pair into the store's arena. Destroy
// bumps the slot generation, so a destroyed handle is rejected with
// ErrInvalidHandle even after its slot is reused. The zero Handle is never
// valid.
//
// # Ownership
//
// The store copies every sample slice it is given and every slice it
// returns. Blobs returned by Serialize belong to the caller.
//
// # Axis Lengths
//
// SetAxis does not compare axis lengths. Serialize and Deserialize reject
// paths whose axes differ in length with ErrAxisLengthMismatch, unless the
// store was created with WithRaggedAxes. A path whose axes were never set
// serializes as zero-length axes.
//
// # Persistence
//
// SaveFile and LoadFile move single paths through the local filesystem,
// Put and Get through any blobstore.BlobStore. Export writes every live
// path plus a manifest and commits it by updating the CURRENT blob;
// Import loads the committed snapshot back. Older snapshots stay readable
// through ImportVersion until DeleteSnapshot drops them.
//
// # Concurrency
//
// A Store is safe for concurrent use. Serialize and the read accessors
// share a read lock; mutations are exclusive.
package pathstore
