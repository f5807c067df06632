package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logolate/go_backend/internal/domain/catalog"
)

func TestMemory_SetGetExpire(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", sampleProducts()))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	now = now.Add(time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	in := sampleProducts()

	require.NoError(t, c.Set(ctx, "k", in))
	in[0].Name = "changed"

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Bombón", got[0].Name)
}

func TestMemory_Delete(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", sampleProducts()))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, catalog.ErrCacheMiss)
}
