// Package blobstore abstracts where serialized paths and snapshot
// manifests are kept.
//
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, mmap reads and atomic writes
//   - MemoryStore: in-process map, for tests and ephemeral stores
//   - CachingStore: LRU read cache in front of another store
//   - minio.Store: any S3-compatible endpoint via minio-go
//   - s3.Store: Amazon S3 via aws-sdk-go-v2, with s3.DDBCommitStore for
//     atomic commits backed by DynamoDB
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Missing blobs must be reported with an error matching ErrNotFound.
package blobstore
