package fs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

const writeBufferSize = 256 * 1024

// WriteFileAtomic writes name by streaming writeFunc into a temporary file in
// the same directory, syncing it and renaming it into place. Readers observe
// either the old content or the complete new content.
func WriteFileAtomic(fsys FileSystem, name string, perm os.FileMode, writeFunc func(io.Writer) error) (err error) {
	if fsys == nil {
		fsys = Default
	}
	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := fsys.CreateTemp(dir, filepath.Base(name)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fsys.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(perm)

	buf := bufio.NewWriterSize(tmp, writeBufferSize)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		_ = fsys.Remove(tmpName)
		committed = true
		return err
	}
	committed = true
	return nil
}
