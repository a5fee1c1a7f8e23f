// Package fs provides the small filesystem abstraction behind atomic blob
// writes, plus a fault-injecting wrapper for tests.
//
// Production code uses fs.Default:
//
//	err := fs.WriteFileAtomic(fs.Default, "track.path", 0o644, func(w io.Writer) error {
//	    _, err := w.Write(blob)
//	    return err
//	})
//
// Tests inject failures:
//
//	ffs := fs.NewFaultyFS(nil, fs.Fault{FailAfterBytes: -1, FailOnSync: true})
package fs
