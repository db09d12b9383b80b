package catalog

import (
	"context"
	"math/rand"
	"slices"
	"sync"
	"time"
)

const (
	DefaultListLatency = 500 * time.Millisecond
	DefaultGetLatency  = 300 * time.Millisecond
)

// MemProvider serves a fixed dataset with an artificial per-call delay,
// standing in for a remote catalog API.
type MemProvider struct {
	mu       sync.RWMutex
	products []Product

	listDelay time.Duration
	getDelay  time.Duration
	shuffle   func(n int, swap func(i, j int))
}

type MemOption func(*MemProvider)

func WithLatency(list, get time.Duration) MemOption {
	return func(s *MemProvider) {
		s.listDelay = list
		s.getDelay = get
	}
}

func WithProducts(products []Product) MemOption {
	return func(s *MemProvider) {
		s.products = slices.Clone(products)
	}
}

func NewMemProvider(opts ...MemOption) *MemProvider {
	s := &MemProvider{
		products: SampleProducts(),
		shuffle:  rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemProvider) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemProvider) ListAll(ctx context.Context) ([]Product, error) {
	if err := sleep(ctx, s.listDelay); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

func (s *MemProvider) GetByID(ctx context.Context, id int64) (Product, bool, error) {
	if err := sleep(ctx, s.getDelay); err != nil {
		return Product{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Product{}, false, nil
}

func (s *MemProvider) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == CategoryAll {
		return s.ListAll(ctx)
	}
	if err := sleep(ctx, s.listDelay); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListFeatured returns a random sample of n products. No distribution is
// promised.
func (s *MemProvider) ListFeatured(ctx context.Context, n int) ([]Product, error) {
	if err := sleep(ctx, s.getDelay); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultFeatured
	}

	s.mu.RLock()
	out := slices.Clone(s.products)
	s.mu.RUnlock()

	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:min(n, len(out))], nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
