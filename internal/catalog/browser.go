package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

// ErrStaleResponse is returned by Browser.Load when a newer Load was issued
// while this one was in flight; its result was dropped.
var ErrStaleResponse = errors.New("stale catalog response")

// View is what a listing screen shows.
type View struct {
	Token    uint64
	Query    Query
	Products []Product
	Filtered []Product
	Page     Page
	Err      error
}

// Browser keeps the latest listing view. Every Load takes a new token and
// only the holder of the most recent token may commit, so responses that
// resolve out of order never overwrite newer state.
type Browser struct {
	provider Provider
	log      *zap.Logger

	mu     sync.Mutex
	issued uint64
	view   View
}

func NewBrowser(p Provider, log *zap.Logger) *Browser {
	return &Browser{provider: p, log: kit.OrNop(log)}
}

func (b *Browser) next() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issued++
	return b.issued
}

func (b *Browser) Load(ctx context.Context, q Query) (View, error) {
	token := b.next()

	products, err := q.Fetch(ctx, b.provider)

	b.mu.Lock()
	defer b.mu.Unlock()

	if token != b.issued {
		b.log.Debug("dropping stale catalog response",
			zap.Uint64("token", token), zap.Uint64("latest", b.issued))
		return b.view, ErrStaleResponse
	}

	if err != nil {
		b.log.Error("load products failed", zap.String("category", q.Category), zap.Error(err))
		b.view = View{Token: token, Query: q, Page: Paginate(nil, q.Page, q.PageSize), Err: err}
		return b.view, err
	}

	b.view = derive(View{Token: token, Query: q, Products: products})
	return b.view, nil
}

// Refilter applies f to the already loaded products without fetching.
func (b *Browser) Refilter(f Filter) View {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.view.Query.Filter = f
	b.view = derive(b.view)
	return b.view
}

func (b *Browser) GoToPage(n int) View {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.view.Query.Page = n
	b.view.Page = Paginate(b.view.Filtered, n, b.view.Query.PageSize)
	return b.view
}

func (b *Browser) Current() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

func derive(v View) View {
	v.Filtered = Apply(v.Products, v.Query.Filter)
	v.Page = Paginate(v.Filtered, v.Query.Page, v.Query.PageSize)
	return v
}
