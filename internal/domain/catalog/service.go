package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Carousel string

const (
	Novedades  Carousel = "novedades"
	Chocolates Carousel = "chocolates"
	Caramelos  Carousel = "caramelos"
)

// Limits caps how many products each storefront carousel shows. The caps
// carry no stated business rule; they are kept configurable.
type Limits struct {
	Novedades  int `yaml:"novedades"`
	Chocolates int `yaml:"chocolates"`
	Caramelos  int `yaml:"caramelos"`
}

func DefaultLimits() Limits {
	return Limits{Novedades: 6, Chocolates: 20, Caramelos: 20}
}

func (l Limits) For(c Carousel) (int, bool) {
	switch c {
	case Novedades:
		return l.Novedades, true
	case Chocolates:
		return l.Chocolates, true
	case Caramelos:
		return l.Caramelos, true
	}
	return 0, false
}

// ProductFilter narrows a backend product listing.
type ProductFilter struct {
	Category string
	OnlyNew  bool
}

type Lister interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
}

var (
	ErrCacheMiss       = errors.New("cache miss")
	ErrUnknownCarousel = errors.New("unknown carousel")
)

type Cache interface {
	Get(ctx context.Context, key string) ([]Product, error)
	Set(ctx context.Context, key string, products []Product) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	lister Lister
	cache  Cache
	limits Limits
	log    *zap.Logger
	sfg    singleflight.Group
}

func NewService(lister Lister, cache Cache, limits Limits, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{lister: lister, cache: cache, limits: limits, log: log}
}

// Carousel returns the active products of a storefront carousel, capped at its limit.
func (s *Service) Carousel(ctx context.Context, c Carousel) ([]Product, error) {
	limit, ok := s.limits.For(c)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCarousel, c)
	}
	key := cacheKey(c)

	// concurrent misses on the same carousel share one backend call, which
	// must outlive whichever caller started it
	shared := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		ctx := shared
		if s.cache != nil {
			products, err := s.cache.Get(ctx, key)
			if err == nil {
				return products, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				s.log.Warn("catalog cache get failed", zap.String("key", key), zap.Error(err))
			}
		}

		f := ProductFilter{}
		if c == Novedades {
			f.OnlyNew = true
		} else {
			f.Category = string(c)
		}
		all, err := s.lister.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		products := selectProducts(all, f, limit)

		if s.cache != nil {
			if err := s.cache.Set(ctx, key, products); err != nil {
				s.log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
			}
		}
		return products, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Product), nil
	}
}

// Invalidate drops every cached carousel. Called after catalog writes.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := []string{cacheKey(Novedades), cacheKey(Chocolates), cacheKey(Caramelos)}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func cacheKey(c Carousel) string { return "carousel:" + string(c) }

func selectProducts(all []Product, f ProductFilter, limit int) []Product {
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if !p.Active {
			continue
		}
		if f.OnlyNew && !p.IsNew {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
