// Package minio stores serialized paths in MinIO or any other
// S3-compatible object store (Ceph, Garage, SeaweedFS).
//
// # Basic Usage
//
//	store, err := minio.Dial(ctx, minio.Config{
//	    Endpoint:     "localhost:9000",
//	    AccessKey:    "minioadmin",
//	    SecretKey:    "minioadmin",
//	    Bucket:       "paths",
//	    Prefix:       "prod/",
//	    CreateBucket: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	manifest, err := paths.Export(ctx, store)
//
// An existing *minio.Client can be wrapped with NewStore.
package minio
