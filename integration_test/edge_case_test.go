package integration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathstore"
	"github.com/hupe1980/pathstore/blobstore"
)

func TestEdgeCase_MaxDimensionality(t *testing.T) {
	s := pathstore.New()

	h, err := s.Create(pathstore.MaxDimensionality, 0)
	require.NoError(t, err)
	require.NoError(t, s.SetAxis(h, pathstore.MaxDimensionality-1, []float32{1}))

	// Every other axis is empty, so the path is ragged.
	_, err = s.Serialize(h)
	require.ErrorIs(t, err, pathstore.ErrAxisLengthMismatch)

	ragged := pathstore.New(pathstore.WithRaggedAxes())
	h, err = ragged.Create(pathstore.MaxDimensionality, 0)
	require.NoError(t, err)
	require.NoError(t, ragged.SetAxis(h, 7, []float32{1, 2, 3}))
	blob, err := ragged.Serialize(h)
	require.NoError(t, err)

	h2, err := ragged.Deserialize(blob)
	require.NoError(t, err)
	dim, err := ragged.Dimensionality(h2)
	require.NoError(t, err)
	assert.Equal(t, pathstore.MaxDimensionality, dim)
	n, err := ragged.AxisLen(h2, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.Create(pathstore.MaxDimensionality+1, 0)
	assert.ErrorIs(t, err, pathstore.ErrInvalidDimension)
}

func TestEdgeCase_HandleFromOtherStore(t *testing.T) {
	a := pathstore.New()
	b := pathstore.New()

	h, err := a.Create(1, 0)
	require.NoError(t, err)
	require.NoError(t, a.Destroy(h))

	// The same slot in another store is unrelated.
	h2, err := b.Create(1, 0)
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.ErrorIs(t, a.SetAxis(h2, 0, nil), pathstore.ErrInvalidHandle)
}

func TestEdgeCase_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := pathstore.New()
	h, err := s.Create(1, 0)
	require.NoError(t, err)

	bs := blobstore.NewMemoryStore()
	_, err = s.Export(ctx, bs)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, bs.Len())

	require.ErrorIs(t, s.Put(ctx, bs, "a", h), context.Canceled)
	_, err = s.Get(ctx, bs, "a")
	require.ErrorIs(t, err, context.Canceled)
}

func TestEdgeCase_ImportTwice(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	s := pathstore.New()
	h, err := s.Create(2, 0)
	require.NoError(t, err)
	require.NoError(t, s.SetAxis(h, 0, []float32{1}))
	require.NoError(t, s.SetAxis(h, 1, []float32{2}))
	_, err = s.Export(ctx, bs)
	require.NoError(t, err)

	first, err := s.Import(ctx, bs)
	require.NoError(t, err)
	second, err := s.Import(ctx, bs)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 3, s.Len())
}
