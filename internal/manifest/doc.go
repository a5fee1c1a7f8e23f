// Package manifest implements atomic manifest persistence for path store
// snapshots.
//
// # Overview
//
// A manifest lists the path blobs of one exported snapshot together with
// the size and checksum of each, so an import can verify every blob
// before it allocates anything for it.
//
// # Atomic Protocol
//
// Save follows a two-phase commit protocol:
//
//  1. Write the manifest blob to manifest-NNNNNN.json (N is the version)
//  2. Update the CURRENT pointer blob to reference the new manifest
//
// Path blobs are written before step 1, so a reader that follows CURRENT
// only ever sees complete snapshots. On local filesystems step 2 is an
// atomic rename. On S3 strong read-after-write consistency makes the
// update visible at once; a DynamoDB-backed commit store makes it
// conditional as well.
//
// # Codecs
//
// A manifest records the codec that wrote it. LoadVersion decodes with
// that codec even if the Store was configured with another one.
//
// # Time Travel
//
// ListVersions returns every readable manifest, LoadVersion loads a
// specific one and DeleteVersion drops a version and its path blobs.
package manifest
