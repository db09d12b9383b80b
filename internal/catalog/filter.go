package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultPageSize = 8

// Filter narrows a product list. Zero values disable a predicate: empty
// Search, invalid price bounds and MinRating <= 0 match everything.
type Filter struct {
	Search    string
	MinPrice  decimal.NullDecimal
	MaxPrice  decimal.NullDecimal
	MinRating float64
}

func (f Filter) Match(p Product) bool {
	if f.Search != "" && !matchesSearch(p, strings.ToLower(f.Search)) {
		return false
	}

	price := p.EffectivePrice()
	if f.MinPrice.Valid && price.LessThan(f.MinPrice.Decimal) {
		return false
	}
	if f.MaxPrice.Valid && price.GreaterThan(f.MaxPrice.Decimal) {
		return false
	}

	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	return true
}

func matchesSearch(p Product, needle string) bool {
	for _, field := range [...]string{p.Title, p.Description, p.Brand, p.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply keeps the products matching f, in input order.
func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

type Page struct {
	Items      []Product `json:"items"`
	Number     int       `json:"page"`
	Size       int       `json:"page_size"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// Paginate slices products into 1-indexed pages. A page outside
// [1, TotalPages] has no items.
func Paginate(products []Product, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	pg := Page{
		Items:      []Product{},
		Number:     number,
		Size:       size,
		Total:      len(products),
		TotalPages: len(products) / size,
	}
	if len(products)%size != 0 {
		pg.TotalPages++
	}
	if number < 1 || number > pg.TotalPages {
		return pg
	}

	start := (number - 1) * size
	end := start + min(size, len(products)-start)
	pg.Items = products[start:end:end]
	return pg
}
