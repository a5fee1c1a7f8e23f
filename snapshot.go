package pathstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pathstore/blobstore"
	"github.com/hupe1980/pathstore/internal/arena"
	"github.com/hupe1980/pathstore/internal/manifest"
	"github.com/hupe1980/pathstore/persistence"
)

// CurrentName is the blob holding the name of the committed manifest.
const CurrentName = manifest.CurrentName

// ErrNoSnapshot is returned when a blob store holds no committed snapshot,
// or not the requested version.
var ErrNoSnapshot = errors.New("no committed snapshot")

type (
	// Manifest lists the blobs of one exported snapshot.
	Manifest = manifest.Manifest
	// ManifestEntry describes one serialized path of a snapshot.
	ManifestEntry = manifest.Entry
)

// ManifestName returns the blob name of the manifest of version.
func ManifestName(version uint64) string { return manifest.FileName(version) }

func (s *Store) manifests(bs blobstore.BlobStore) *manifest.Store {
	return manifest.NewStore(bs, s.opts.codec)
}

// serializeAll encodes every live path under one read lock, so the result
// is a consistent cut of the store.
func (s *Store) serializeAll() ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	var (
		blobs [][]byte
		err   error
	)
	s.paths.Range(func(r arena.Ref, p *path) bool {
		if !s.opts.ragged {
			if err = checkLengths(p.axes); err != nil {
				err = fmt.Errorf("%s: %w", Handle{ref: r}, err)
				return false
			}
		}
		var blob []byte
		blob, err = persistence.Encode(p.axes, persistence.EncodeOptions{Compression: s.opts.compression})
		if err != nil {
			err = translateError(err)
			return false
		}
		blobs = append(blobs, blob)
		return true
	})
	return blobs, err
}

// Export writes every live path and a manifest to bs, then commits the
// manifest by pointing CURRENT at it. Paths are written in parallel. If
// any write fails, the blobs written so far are deleted and CURRENT is
// left untouched.
//
// Path blobs live under a prefix unique to each export, so a failed export
// only removes its own blobs. The version is derived from CURRENT, so
// exporters sharing bs must be serialized by the caller, or commit through
// a store that rejects conflicting CURRENT writes such as
// s3.DDBCommitStore.
func (s *Store) Export(ctx context.Context, bs blobstore.BlobStore) (m *Manifest, err error) {
	var version uint64
	var count int
	defer func() { s.logger.LogExport(ctx, version, count, err) }()

	ms := s.manifests(bs)
	prev, err := ms.Current(ctx)
	if err != nil && !errors.Is(err, manifest.ErrNotFound) {
		return nil, translateError(err)
	}
	version = prev + 1
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("export id: %w", err)
	}
	exportID := id.String()

	blobs, err := s.serializeAll()
	if err != nil {
		return nil, err
	}
	count = len(blobs)

	var (
		mu      sync.Mutex
		written []string
	)
	cleanup := func(names ...string) {
		dctx := context.WithoutCancel(ctx)
		for _, name := range append(written, names...) {
			_ = bs.Delete(dctx, name)
		}
	}

	entries := make([]ManifestEntry, len(blobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for i, blob := range blobs {
		g.Go(func() error {
			if err := s.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer s.rc.ReleaseBackground()

			info, err := persistence.Inspect(blob, persistence.DecodeOptions{})
			if err != nil {
				return translateError(err)
			}
			name := manifest.PathName(version, exportID, i)
			if err := s.rc.AcquireIO(gctx, len(blob)); err != nil {
				return err
			}
			if err := bs.Put(gctx, name, blob); err != nil {
				return fmt.Errorf("put %s: %w", name, err)
			}

			mu.Lock()
			written = append(written, name)
			mu.Unlock()

			entries[i] = ManifestEntry{
				Name:           name,
				Dimensionality: info.Dimensionality,
				Counts:         info.Counts,
				Size:           info.Size,
				Checksum:       info.Checksum,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleanup()
		return nil, err
	}

	m = &Manifest{
		Version:     version,
		ExportID:    exportID,
		CreatedAt:   time.Now().UTC(),
		Compression: s.opts.compression.String(),
		Entries:     entries,
	}
	if err := ms.Save(ctx, m); err != nil {
		cleanup(manifest.FileName(version))
		return nil, err
	}
	return m, nil
}

// ReadManifest returns the committed manifest of bs.
func (s *Store) ReadManifest(ctx context.Context, bs blobstore.BlobStore) (*Manifest, error) {
	m, err := s.manifests(bs).Load(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return m, nil
}

// Snapshots returns the readable manifests in bs, oldest first.
func (s *Store) Snapshots(ctx context.Context, bs blobstore.BlobStore) ([]*Manifest, error) {
	return s.manifests(bs).ListVersions(ctx)
}

// DeleteSnapshot removes an old snapshot version from bs. The committed
// version cannot be deleted.
func (s *Store) DeleteSnapshot(ctx context.Context, bs blobstore.BlobStore, version uint64) error {
	return translateError(s.manifests(bs).DeleteVersion(ctx, version))
}

// Import loads the committed snapshot of bs into new paths and returns
// their handles in manifest order.
func (s *Store) Import(ctx context.Context, bs blobstore.BlobStore) ([]Handle, error) {
	return s.ImportVersion(ctx, bs, 0)
}

// ImportVersion is Import for a specific snapshot version; 0 selects the
// committed one. Every blob is checked against the size and checksum its
// manifest records. On failure no path is left behind.
func (s *Store) ImportVersion(ctx context.Context, bs blobstore.BlobStore, version uint64) (handles []Handle, err error) {
	defer func() { s.logger.LogImport(ctx, version, len(handles), err) }()

	m, err := s.manifests(bs).LoadVersion(ctx, version)
	if err != nil {
		return nil, translateError(err)
	}
	version = m.Version

	loaded := make([]Handle, len(m.Entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.concurrency)
	for i, e := range m.Entries {
		g.Go(func() error {
			if err := s.rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer s.rc.ReleaseBackground()

			blob, err := s.readBlob(gctx, bs, e.Name)
			if err != nil {
				return fmt.Errorf("read %s: %w", e.Name, err)
			}
			info, err := persistence.Inspect(blob, s.decodeOptions())
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name, translateError(err))
			}
			if info.Size != e.Size || info.Checksum != e.Checksum {
				return fmt.Errorf("%w: %s does not match its manifest entry", ErrMalformedData, e.Name)
			}
			h, err := s.Deserialize(blob)
			if err != nil {
				return fmt.Errorf("%s: %w", e.Name, err)
			}
			loaded[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, h := range loaded {
			if !h.IsZero() {
				_ = s.Destroy(h)
			}
		}
		return nil, err
	}
	return loaded, nil
}
