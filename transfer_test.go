package pathstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathstore/blobstore"
	"github.com/hupe1980/pathstore/internal/fs"
	"github.com/hupe1980/pathstore/persistence"
	"github.com/hupe1980/pathstore/testutil"
)

func TestStore_SaveLoadFile(t *testing.T) {
	ctx := context.Background()
	s := New(WithCompression(persistence.CompressionZSTD))
	axes := [][]float32{testutil.Smooth(1000), testutil.Ramp(1000, 0.5)}
	h := populate(t, s, axes)

	name := filepath.Join(t.TempDir(), "a.path")
	require.NoError(t, s.SaveFile(ctx, name, h))

	h2, err := s.LoadFile(ctx, name)
	require.NoError(t, err)
	requireAxes(t, s, h2, axes)

	// Overwrite in place.
	require.NoError(t, s.SetAxis(h, 0, testutil.Ramp(1000, 3)))
	require.NoError(t, s.SaveFile(ctx, name, h))
	h3, err := s.LoadFile(ctx, name)
	require.NoError(t, err)
	requireAxes(t, s, h3, [][]float32{testutil.Ramp(1000, 3), axes[1]})
}

func TestStore_SaveFileFailureKeepsOldContent(t *testing.T) {
	ctx := context.Background()
	s := New()
	h := populate(t, s, [][]float32{{1, 2, 3}})

	name := filepath.Join(t.TempDir(), "a.path")
	require.NoError(t, s.SaveFile(ctx, name, h))
	before, err := os.ReadFile(name)
	require.NoError(t, err)

	require.NoError(t, s.SetAxis(h, 0, []float32{4, 5, 6}))
	for _, fault := range []fs.Fault{
		{FailAfterBytes: 5},
		{FailAfterBytes: -1, FailOnSync: true},
		{FailAfterBytes: -1, FailOnRename: true},
	} {
		err := s.saveFile(ctx, fs.NewFaultyFS(fs.Default, fault), name, h)
		require.ErrorIs(t, err, fs.ErrInjected)

		after, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	}
}

func TestStore_LoadFileErrors(t *testing.T) {
	ctx := context.Background()
	s := New()
	dir := t.TempDir()

	_, err := s.LoadFile(ctx, filepath.Join(dir, "missing.path"))
	require.ErrorIs(t, err, os.ErrNotExist)

	junk := filepath.Join(dir, "junk.path")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a path blob"), 0o644))
	_, err = s.LoadFile(ctx, junk)
	require.ErrorIs(t, err, ErrMalformedData)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Base64(t *testing.T) {
	s := New(WithCompression(persistence.CompressionLZ4))
	h := populate(t, s, [][]float32{testutil.SpecialValues()})

	text, err := s.EncodeBase64(h)
	require.NoError(t, err)

	h2, err := s.DecodeBase64(text)
	require.NoError(t, err)
	requireAxes(t, s, h2, [][]float32{testutil.SpecialValues()})

	_, err = s.DecodeBase64("%%%")
	assert.ErrorIs(t, err, ErrMalformedData)
	_, err = s.DecodeBase64("UEFUSA==")
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	for name, s := range map[string]*Store{
		"unlimited": New(),
		"io limit":  New(WithIOLimit(1 << 20)),
	} {
		t.Run(name, func(t *testing.T) {
			axes := testutil.NewRNG(9).Axes(3, 100)
			h := populate(t, s, axes)
			require.NoError(t, s.Put(ctx, bs, name, h))

			h2, err := s.Get(ctx, bs, name)
			require.NoError(t, err)
			requireAxes(t, s, h2, axes)
		})
	}

	_, err := New().Get(ctx, bs, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, bs.Put(ctx, "junk", []byte("junk")))
	_, err = New().Get(ctx, bs, "junk")
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestStore_PutGetLocal(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewLocalStore(t.TempDir())

	s := New()
	h := populate(t, s, [][]float32{{1, 2}, {3, 4}})
	require.NoError(t, s.Put(ctx, bs, "nested/a.path", h))

	h2, err := s.Get(ctx, bs, "nested/a.path")
	require.NoError(t, err)
	requireAxes(t, s, h2, [][]float32{{1, 2}, {3, 4}})
}

func TestStore_PutRejectsInvalidHandle(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	s := New()

	assert.ErrorIs(t, s.Put(ctx, bs, "a", Handle{}), ErrInvalidHandle)
	assert.Equal(t, 0, bs.Len())
}
