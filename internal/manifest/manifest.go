package manifest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/pathstore/blobstore"
	"github.com/hupe1980/pathstore/codec"
)

const (
	// CurrentName is the blob naming the committed manifest.
	CurrentName = "CURRENT"
	// CurrentFormat is the manifest layout written by Save.
	CurrentFormat = 1

	namePrefix = "manifest-"
	nameSuffix = ".json"
)

var (
	// ErrNotFound is returned when nothing was committed yet, or when the
	// requested version does not exist.
	ErrNotFound = errors.New("manifest not found")

	// ErrIncompatibleVersion is returned for a manifest layout this package
	// cannot read.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrCorrupt is returned when CURRENT or a manifest cannot be decoded.
	ErrCorrupt = errors.New("corrupt manifest")

	// ErrCurrentVersion is returned by DeleteVersion for the committed version.
	ErrCurrentVersion = errors.New("version is committed")
)

// Manifest describes one exported snapshot.
type Manifest struct {
	Format      int       `json:"format"`
	Version     uint64    `json:"version"`
	ExportID    string    `json:"export_id,omitempty"`
	Codec       string    `json:"codec"`
	CreatedAt   time.Time `json:"created_at"`
	Compression string    `json:"compression"`
	Entries     []Entry   `json:"entries"`
}

// Entry describes one serialized path.
type Entry struct {
	Name           string   `json:"name"`
	Dimensionality int      `json:"dimensionality"`
	Counts         []uint64 `json:"counts"`
	Size           int      `json:"size"`
	Checksum       uint32   `json:"checksum"`
}

// FileName returns the blob name of the manifest of version.
func FileName(version uint64) string {
	return fmt.Sprintf("%s%06d%s", namePrefix, version, nameSuffix)
}

// PathName returns the blob name of path i written by export exportID for
// version. Distinct exports never share a name, even for the same version.
func PathName(version uint64, exportID string, i int) string {
	return fmt.Sprintf("paths/%06d-%s/%d.path", version, exportID, i)
}

// ParseFileName reverses FileName.
func ParseFileName(name string) (uint64, error) {
	v, ok := strings.CutPrefix(name, namePrefix)
	if ok {
		v, ok = strings.CutSuffix(v, nameSuffix)
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a manifest name", ErrCorrupt, name)
	}
	version, err := strconv.ParseUint(v, 10, 64)
	if err != nil || version == 0 {
		return 0, fmt.Errorf("%w: %q is not a manifest name", ErrCorrupt, name)
	}
	return version, nil
}

// Store reads and commits manifests in a blob store.
type Store struct {
	store blobstore.BlobStore
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a manifest store. New manifests are written with c,
// or codec.Default if c is nil.
func NewStore(store blobstore.BlobStore, c codec.Codec) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{store: store, codec: c}
}

// Current returns the committed version, or ErrNotFound.
func (s *Store) Current(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

func (s *Store) current(ctx context.Context) (uint64, error) {
	data, err := blobstore.Get(ctx, s.store, CurrentName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return ParseFileName(strings.TrimSpace(string(data)))
}

// Load loads the committed manifest.
func (s *Store) Load(ctx context.Context) (*Manifest, error) {
	return s.LoadVersion(ctx, 0)
}

// LoadVersion loads a specific version. 0 means the committed one.
func (s *Store) LoadVersion(ctx context.Context, version uint64) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version == 0 {
		v, err := s.current(ctx)
		if err != nil {
			return nil, err
		}
		version = v
	}
	return s.load(ctx, version)
}

func (s *Store) load(ctx context.Context, version uint64) (*Manifest, error) {
	name := FileName(version)
	data, err := blobstore.Get(ctx, s.store, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: version %d", ErrNotFound, version)
		}
		return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
	}

	m, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if m.Version != version {
		return nil, fmt.Errorf("%w: %s declares version %d", ErrCorrupt, name, m.Version)
	}
	return m, nil
}

// decode uses the codec the manifest names, which may differ from s.codec.
func (s *Store) decode(data []byte) (*Manifest, error) {
	var probe struct {
		Codec string `json:"codec"`
	}
	c := s.codec
	if err := c.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if probe.Codec != c.Name() {
		other, err := codec.Lookup(probe.Codec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		c = other
	}

	var m Manifest
	if err := c.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if m.Format != CurrentFormat {
		return nil, fmt.Errorf("%w: %d", ErrIncompatibleVersion, m.Format)
	}
	return &m, nil
}

// ListVersions returns all readable manifests, oldest first.
// Unreadable or corrupt manifests are skipped.
func (s *Store) ListVersions(ctx context.Context) ([]*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.store.List(ctx, namePrefix)
	if err != nil {
		return nil, err
	}
	var manifests []*Manifest
	for _, name := range names {
		version, err := ParseFileName(name)
		if err != nil {
			continue
		}
		m, err := s.load(ctx, version)
		if err != nil {
			continue
		}
		manifests = append(manifests, m)
	}
	slices.SortFunc(manifests, func(a, b *Manifest) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	return manifests, nil
}

// Save writes m and commits it. The path blobs m lists must already be
// written. Format and Codec are set by Save; a zero CreatedAt is set to
// the current time.
func (s *Store) Save(ctx context.Context, m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.Format = CurrentFormat
	m.Codec = s.codec.Name()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	data, err := s.codec.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	name := FileName(m.Version)
	if err := s.store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	if err := s.store.Put(ctx, CurrentName, []byte(name)); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// DeleteVersion deletes a manifest that is not committed, and the path
// blobs it lists.
func (s *Store) DeleteVersion(ctx context.Context, version uint64) error {
	if version == 0 {
		return fmt.Errorf("%w: version 0", ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.current(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if version == current {
		return fmt.Errorf("%w: %d", ErrCurrentVersion, version)
	}

	m, err := s.load(ctx, version)
	if err != nil {
		return err
	}
	for _, e := range m.Entries {
		if err := s.store.Delete(ctx, e.Name); err != nil {
			return fmt.Errorf("delete %s: %w", e.Name, err)
		}
	}
	return s.store.Delete(ctx, FileName(version))
}
