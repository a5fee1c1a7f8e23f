// Package mmap provides read-only memory-mapped file access.
//
// It backs blobstore.LocalStore and Store.LoadFile: a path blob on disk is
// mapped, decoded (which copies the samples out) and unmapped again.
//
//	m, err := mmap.Open("track.path")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch the slice returned by Bytes after Close.
package mmap
