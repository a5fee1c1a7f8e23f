package fs

import (
	"errors"
	"os"
	"sync"
)

// ErrInjected is the default error returned by FaultyFS.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes when a FaultyFS file fails.
type Fault struct {
	// FailAfterBytes fails writes once this many bytes were written to one
	// file. Negative disables the limit.
	FailAfterBytes int64
	FailOnSync     bool
	FailOnRename   bool
	Err            error
}

// FaultyFS wraps a FileSystem and injects failures, for tests.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	fault Fault
}

// NewFaultyFS wraps fsys (or Default if nil) with the given fault.
func NewFaultyFS(fsys FileSystem, fault Fault) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	return &FaultyFS{FS: fsys, fault: fault}
}

func (f *FaultyFS) current() Fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fault
}

func (f *FaultyFS) CreateTemp(dir, pattern string) (File, error) {
	file, err := f.FS.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fault: f.current()}, nil
}

func (f *FaultyFS) Remove(name string) error { return f.FS.Remove(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault := f.current(); fault.FailOnRename {
		return fault.Err
	}
	return f.FS.Rename(oldpath, newpath)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.FS.MkdirAll(path, perm) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.fault.FailAfterBytes >= 0 && f.written+int64(len(p)) > f.fault.FailAfterBytes {
		allowed := f.fault.FailAfterBytes - f.written
		if allowed > 0 {
			n, _ := f.File.Write(p[:allowed])
			f.written += int64(n)
			return n, f.fault.Err
		}
		return 0, f.fault.Err
	}
	n, err := f.File.Write(p)
	f.written += int64(n)
	return n, err
}

func (f *faultyFile) Sync() error {
	if f.fault.FailOnSync {
		return f.fault.Err
	}
	return f.File.Sync()
}
