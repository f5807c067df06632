package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	m        sync.Mutex
	products []Product
	err      error
	calls    int
	filters  []ProductFilter
}

func (l *mockLister) ListProducts(_ context.Context, f ProductFilter) ([]Product, error) {
	l.m.Lock()
	defer l.m.Unlock()
	l.calls++
	l.filters = append(l.filters, f)
	if l.err != nil {
		return nil, l.err
	}
	return l.products, nil
}

type mockCache struct {
	m    sync.Mutex
	data map[string][]Product
	err  error
}

func (c *mockCache) Get(_ context.Context, key string) ([]Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (c *mockCache) Set(_ context.Context, key string, products []Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.data == nil {
		c.data = map[string][]Product{}
	}
	c.data[key] = products
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	c.m.Lock()
	defer c.m.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func manyProducts(n int, isNew bool) []Product {
	out := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Product{ID: fmt.Sprintf("p%d", i), Active: true, IsNew: isNew})
	}
	return out
}

func TestCarousel_NovedadesCappedAtSix(t *testing.T) {
	lister := &mockLister{products: manyProducts(10, true)}
	sut := NewService(lister, nil, DefaultLimits(), nil)

	got, err := sut.Carousel(context.Background(), Novedades)
	require.NoError(t, err)
	assert.Len(t, got, 6)
	require.Len(t, lister.filters, 1)
	assert.True(t, lister.filters[0].OnlyNew)
}

func TestCarousel_ChocolatesFilterAndInactiveSkipped(t *testing.T) {
	products := manyProducts(25, false)
	products[0].Active = false
	lister := &mockLister{products: products}
	sut := NewService(lister, nil, DefaultLimits(), nil)

	got, err := sut.Carousel(context.Background(), Chocolates)
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "chocolates", lister.filters[0].Category)
}

func TestCarousel_CustomLimits(t *testing.T) {
	lister := &mockLister{products: manyProducts(5, false)}
	sut := NewService(lister, nil, Limits{Novedades: 1, Chocolates: 2, Caramelos: 3}, nil)

	got, err := sut.Carousel(context.Background(), Caramelos)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestCarousel_Unknown(t *testing.T) {
	sut := NewService(&mockLister{}, nil, DefaultLimits(), nil)
	_, err := sut.Carousel(context.Background(), Carousel("turrones"))
	assert.ErrorIs(t, err, ErrUnknownCarousel)
}

func TestCarousel_CacheHitSkipsBackend(t *testing.T) {
	lister := &mockLister{products: manyProducts(3, false)}
	cache := &mockCache{}
	sut := NewService(lister, cache, DefaultLimits(), nil)

	_, err := sut.Carousel(context.Background(), Chocolates)
	require.NoError(t, err)
	got, err := sut.Carousel(context.Background(), Chocolates)
	require.NoError(t, err)

	assert.Len(t, got, 3)
	assert.Equal(t, 1, lister.calls)
}

func TestCarousel_CacheErrorFallsBackToBackend(t *testing.T) {
	lister := &mockLister{products: manyProducts(2, false)}
	sut := NewService(lister, &mockCache{err: errors.New("redis down")}, DefaultLimits(), nil)

	got, err := sut.Carousel(context.Background(), Caramelos)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCarousel_BackendError(t *testing.T) {
	sut := NewService(&mockLister{err: errors.New("boom")}, nil, DefaultLimits(), nil)
	_, err := sut.Carousel(context.Background(), Caramelos)
	assert.EqualError(t, err, "boom")
}

func TestInvalidate_DropsCachedCarousels(t *testing.T) {
	lister := &mockLister{products: manyProducts(3, true)}
	cache := &mockCache{}
	sut := NewService(lister, cache, DefaultLimits(), nil)

	_, err := sut.Carousel(context.Background(), Novedades)
	require.NoError(t, err)
	_, err = sut.Carousel(context.Background(), Novedades)
	require.NoError(t, err)
	assert.Len(t, lister.filters, 1)

	sut.Invalidate(context.Background())

	_, err = sut.Carousel(context.Background(), Novedades)
	require.NoError(t, err)
	assert.Len(t, lister.filters, 2)
}

type blockingLister struct {
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (l *blockingLister) ListProducts(ctx context.Context, _ ProductFilter) ([]Product, error) {
	l.started <- struct{}{}
	<-l.release
	l.ctxErr <- ctx.Err()
	return manyProducts(2, true), nil
}

func TestCarousel_CanceledCallerDoesNotCancelSharedFetch(t *testing.T) {
	lister := &blockingLister{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 2),
	}
	s := NewService(lister, nil, DefaultLimits(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Carousel(ctx, Novedades)
		firstErr <- err
	}()
	<-lister.started

	second := make(chan []Product, 1)
	go func() {
		got, err := s.Carousel(context.Background(), Novedades)
		assert.NoError(t, err)
		second <- got
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(lister.release)
	assert.NoError(t, <-lister.ctxErr)
	assert.Len(t, <-second, 2)
}
