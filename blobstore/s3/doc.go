// Package s3 stores serialized paths in Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("paths/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	manifest, err := paths.Export(ctx, store)
//
// S3 has no compare-and-swap, so two writers exporting into the same
// prefix can overwrite each other's CURRENT pointer. DDBCommitStore keeps
// the pointer in a DynamoDB table instead and rejects a commit that lost
// the race with ErrConcurrentModification.
//
// Small blobs are written with a single PutObject carrying a CRC32-C
// checksum; Create streams through the multipart upload manager.
package s3
