package manifest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathstore/blobstore"
	"github.com/hupe1980/pathstore/codec"
)

func save(t *testing.T, s *Store, bs blobstore.BlobStore, version uint64, paths int) *Manifest {
	t.Helper()
	ctx := context.Background()
	m := &Manifest{Version: version, Compression: "none"}
	for i := range paths {
		name := PathName(version, "test", i)
		require.NoError(t, bs.Put(ctx, name, []byte{byte(i)}))
		m.Entries = append(m.Entries, Entry{Name: name, Dimensionality: 1, Counts: []uint64{0}, Size: 1})
	}
	require.NoError(t, s.Save(ctx, m))
	return m
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	s := NewStore(bs, nil)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Current(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	m := save(t, s, bs, 1, 2)
	assert.Equal(t, CurrentFormat, m.Format)
	assert.Equal(t, codec.Default.Name(), m.Codec)
	assert.False(t, m.CreatedAt.IsZero())

	current, err := blobstore.Get(ctx, bs, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, "manifest-000001.json", string(current))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Entries, loaded.Entries)
	assert.True(t, m.CreatedAt.Equal(loaded.CreatedAt))

	v, err := s.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestStore_KeepsCreatedAt(t *testing.T) {
	bs := blobstore.NewMemoryStore()
	s := NewStore(bs, nil)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := &Manifest{Version: 1, CreatedAt: at}
	require.NoError(t, s.Save(context.Background(), m))
	assert.Equal(t, at, m.CreatedAt)
}

func TestStore_ReadsOtherCodec(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	save(t, NewStore(bs, codec.JSON{}), bs, 1, 1)

	m, err := NewStore(bs, codec.GoJSON{}).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, codec.JSON{}.Name(), m.Codec)
	assert.Len(t, m.Entries, 1)
}

func TestStore_LoadRejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		current  string
		manifest string
		err      error
	}{
		{"bad current", "HEAD", `{}`, ErrCorrupt},
		{"not json", FileName(1), `{`, ErrCorrupt},
		{"unknown codec", FileName(1), `{"format":1,"version":1,"codec":"nope"}`, ErrCorrupt},
		{"future format", FileName(1), `{"format":2,"version":1,"codec":"json"}`, ErrIncompatibleVersion},
		{"version differs", FileName(1), `{"format":1,"version":2,"codec":"json"}`, ErrCorrupt},
		{"dangling current", FileName(7), `{}`, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bs := blobstore.NewMemoryStore()
			require.NoError(t, bs.Put(ctx, CurrentName, []byte(tt.current)))
			require.NoError(t, bs.Put(ctx, FileName(1), []byte(tt.manifest)))

			_, err := NewStore(bs, nil).Load(ctx)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestStore_Versions(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	s := NewStore(bs, nil)

	for v := uint64(1); v <= 3; v++ {
		save(t, s, bs, v, int(v))
	}
	// Noise the listing must skip.
	require.NoError(t, bs.Put(ctx, "manifest-junk.json", []byte("{")))
	require.NoError(t, bs.Put(ctx, FileName(9), []byte("{")))

	versions, err := s.ListVersions(ctx)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, m := range versions {
		assert.Equal(t, uint64(i+1), m.Version)
	}

	m, err := s.LoadVersion(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, m.Entries, 2)

	_, err = s.LoadVersion(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteVersion(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	s := NewStore(bs, nil)

	save(t, s, bs, 1, 2)
	save(t, s, bs, 2, 1)

	require.ErrorIs(t, s.DeleteVersion(ctx, 2), ErrCurrentVersion)
	require.NoError(t, s.DeleteVersion(ctx, 1))

	names, err := bs.List(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{CurrentName, FileName(2), PathName(2, "test", 0)}, names)

	assert.ErrorIs(t, s.DeleteVersion(ctx, 1), ErrNotFound)
	assert.ErrorIs(t, s.DeleteVersion(ctx, 0), ErrNotFound)
}

func TestStore_DeleteVersionNothingCommitted(t *testing.T) {
	s := NewStore(blobstore.NewMemoryStore(), nil)

	err := s.DeleteVersion(context.Background(), 0)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrCurrentVersion)
}

func TestParseFileName(t *testing.T) {
	v, err := ParseFileName(FileName(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	v, err = ParseFileName("manifest-7.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)

	for _, name := range []string{"", "manifest-.json", "manifest-0.json", "manifest-x.json", "manifest-1.yaml"} {
		_, err := ParseFileName(name)
		assert.ErrorIs(t, err, ErrCorrupt, name)
	}
}
