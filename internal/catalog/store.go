package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

const CategoryAll = "All"

var categories = []string{"smartphones", "electronics", "laptops", "gaming"}

// Categories lists the browsable categories, "All" first.
func Categories() []string {
	return append([]string{CategoryAll}, categories...)
}

func IsCategory(c string) bool {
	return slices.Contains(categories, c)
}

var ErrInvalidProduct = errors.New("invalid product")

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 int64           `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage float64         `json:"discount_percentage,omitempty"`
	Rating             float64         `json:"rating"`
	Stock              int             `json:"stock"`
	Brand              string          `json:"brand"`
	Category           string          `json:"category"`
	Thumbnail          string          `json:"thumbnail"`
	Images             []string        `json:"images"`
}

func (p Product) HasDiscount() bool {
	return p.DiscountPercentage > 0
}

// EffectivePrice is the price after the discount percentage, computed on
// every call.
func (p Product) EffectivePrice() decimal.Decimal {
	if !p.HasDiscount() {
		return p.Price
	}
	pct := decimal.NewFromFloat(min(p.DiscountPercentage, 100))
	return p.Price.Mul(hundred.Sub(pct)).Div(hundred)
}

func (p Product) Validate() error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: negative price", ErrInvalidProduct)
	case p.DiscountPercentage < 0 || p.DiscountPercentage > 100:
		return fmt.Errorf("%w: discount %.2f out of range", ErrInvalidProduct, p.DiscountPercentage)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: rating %.2f out of range", ErrInvalidProduct, p.Rating)
	case p.Stock < 0:
		return fmt.Errorf("%w: negative stock", ErrInvalidProduct)
	case !IsCategory(p.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	case len(p.Images) == 0:
		return fmt.Errorf("%w: no images", ErrInvalidProduct)
	}
	return nil
}

// Provider is the read side of the catalog. Implementations may block on
// I/O or simulated latency; every call honours ctx.
type Provider interface {
	Ping(ctx context.Context) error
	ListAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, bool, error)
	ListByCategory(ctx context.Context, category string) ([]Product, error)
	ListFeatured(ctx context.Context, n int) ([]Product, error)
}

const DefaultFeatured = 4
