package catalog

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Storefront/pkg/kit"
)

type Home struct {
	Featured []Product `json:"featured"`
	Products []Product `json:"products"`
}

// LoadHome fetches the featured sample and the full listing concurrently.
func LoadHome(ctx context.Context, p Provider, featured int) (Home, error) {
	var h Home

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h.Featured, err = p.ListFeatured(gctx, featured)
		return err
	})
	g.Go(func() error {
		var err error
		h.Products, err = p.ListAll(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	return h, nil
}

type Detail struct {
	Product Product   `json:"product"`
	Related []Product `json:"related"`
}

// LoadDetail fetches a product and a featured sample of other products.
// A failure to load the related sample degrades to an empty list.
func LoadDetail(ctx context.Context, p Provider, id int64, log *zap.Logger) (Detail, bool, error) {
	product, ok, err := p.GetByID(ctx, id)
	if err != nil || !ok {
		return Detail{}, false, err
	}

	d := Detail{Product: product, Related: []Product{}}

	related, err := p.ListFeatured(ctx, DefaultFeatured)
	if err != nil {
		kit.OrNop(log).Warn("related products unavailable", zap.Int64("product_id", id), zap.Error(err))
		return d, true, nil
	}

	for _, r := range related {
		if r.ID != id {
			d.Related = append(d.Related, r)
		}
	}
	return d, true, nil
}
