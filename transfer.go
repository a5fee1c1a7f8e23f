package pathstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/hupe1980/pathstore/blobstore"
	"github.com/hupe1980/pathstore/internal/fs"
	"github.com/hupe1980/pathstore/internal/mmap"
	"github.com/hupe1980/pathstore/resource"
)

// SaveFile serializes the path and writes it to filename atomically:
// readers see either the previous file or the complete new one.
func (s *Store) SaveFile(ctx context.Context, filename string, h Handle) error {
	return s.saveFile(ctx, fs.Default, filename, h)
}

func (s *Store) saveFile(ctx context.Context, fsys fs.FileSystem, filename string, h Handle) error {
	blob, err := s.Serialize(h)
	if err != nil {
		return err
	}
	err = fs.WriteFileAtomic(fsys, filename, 0o644, func(w io.Writer) error {
		_, err := resource.NewRateLimitedWriter(ctx, w, s.rc).Write(blob)
		return err
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// LoadFile maps filename into memory and deserializes it into a new path.
func (s *Store) LoadFile(ctx context.Context, filename string) (Handle, error) {
	m, err := mmap.Open(filename)
	if err != nil {
		return Handle{}, fmt.Errorf("load %s: %w", filename, err)
	}
	defer m.Close()
	_ = m.Advise(mmap.AccessSequential)

	if err := s.rc.AcquireIO(ctx, m.Size()); err != nil {
		return Handle{}, err
	}
	h, err := s.Deserialize(m.Bytes())
	if err != nil {
		return Handle{}, fmt.Errorf("load %s: %w", filename, err)
	}
	return h, nil
}

// EncodeBase64 serializes the path as standard base64 text.
func (s *Store) EncodeBase64(h Handle) (string, error) {
	blob, err := s.Serialize(h)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecodeBase64 reverses EncodeBase64. Text that is not valid base64 is
// ErrMalformedData.
func (s *Store) DecodeBase64(text string) (Handle, error) {
	blob, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return Handle{}, fmt.Errorf("%w: base64: %w", ErrMalformedData, err)
	}
	return s.Deserialize(blob)
}

// Put serializes the path into the blob called name.
func (s *Store) Put(ctx context.Context, bs blobstore.BlobStore, name string, h Handle) error {
	blob, err := s.Serialize(h)
	if err != nil {
		return err
	}
	if err := s.rc.AcquireIO(ctx, len(blob)); err != nil {
		return err
	}
	if err := bs.Put(ctx, name, blob); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

// Get reads the blob called name into a new path.
func (s *Store) Get(ctx context.Context, bs blobstore.BlobStore, name string) (Handle, error) {
	blob, err := s.readBlob(ctx, bs, name)
	if err != nil {
		return Handle{}, fmt.Errorf("get %s: %w", name, err)
	}
	return s.Deserialize(blob)
}

// readBlob reads a whole blob, throttled by the IO limit if one is set.
func (s *Store) readBlob(ctx context.Context, bs blobstore.BlobStore, name string) ([]byte, error) {
	b, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if s.rc == nil {
		return blobstore.ReadAll(ctx, b)
	}
	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(resource.NewRateLimitedReader(ctx, r, s.rc))
}
