package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const MaxPageSize = 100

// Query is a listing request: which products to fetch, how to filter
// them, and which page to show.
type Query struct {
	Category string
	Filter   Filter
	Page     int
	PageSize int
}

// ParseQuery reads a listing query from untrusted parameters. Missing or
// malformed values fall back to defaults instead of failing.
func ParseQuery(v url.Values) Query {
	q := Query{
		Category: strings.TrimSpace(v.Get("category")),
		Page:     parsePositive(v.Get("page"), 1),
		PageSize: min(parsePositive(v.Get("page_size"), DefaultPageSize), MaxPageSize),
		Filter: Filter{
			Search:   strings.TrimSpace(v.Get("search")),
			MinPrice: parseDecimal(v.Get("min_price")),
			MaxPrice: parseDecimal(v.Get("max_price")),
		},
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}

	if rating, err := cast.ToFloat64E(strings.TrimSpace(v.Get("min_rating"))); err == nil && rating > 0 {
		q.Filter.MinRating = rating
	}
	return q
}

// Values renders q back into query parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Category != "" && q.Category != CategoryAll {
		v.Set("category", q.Category)
	}
	if q.Filter.Search != "" {
		v.Set("search", q.Filter.Search)
	}
	if q.Filter.MinPrice.Valid {
		v.Set("min_price", q.Filter.MinPrice.Decimal.String())
	}
	if q.Filter.MaxPrice.Valid {
		v.Set("max_price", q.Filter.MaxPrice.Decimal.String())
	}
	if q.Filter.MinRating > 0 {
		v.Set("min_rating", strconv.FormatFloat(q.Filter.MinRating, 'f', -1, 64))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 && q.PageSize != DefaultPageSize {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// Fetch loads the unfiltered product set the query is about.
func (q Query) Fetch(ctx context.Context, p Provider) ([]Product, error) {
	if q.Category == "" || q.Category == CategoryAll {
		return p.ListAll(ctx)
	}
	return p.ListByCategory(ctx, q.Category)
}

// Run fetches, filters and paginates in one step.
func (q Query) Run(ctx context.Context, p Provider) (Page, error) {
	products, err := q.Fetch(ctx, p)
	if err != nil {
		return Page{}, err
	}
	return Paginate(Apply(products, q.Filter), q.Page, q.PageSize), nil
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
