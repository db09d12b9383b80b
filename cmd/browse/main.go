package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

func main() {
	var (
		catalogURL = pflag.String("catalog", kit.Getenv("CATALOG_URL", "http://localhost:8082"), "catalog service base URL")
		category   = pflag.String("category", catalog.CategoryAll, "category to list")
		search     = pflag.String("search", "", "case-insensitive title/description search")
		page       = pflag.Int("page", 1, "page number")
		pageSize   = pflag.Int("page-size", catalog.DefaultPageSize, "products per page")
		minPrice   = pflag.String("min-price", "", "lower price bound")
		maxPrice   = pflag.String("max-price", "", "upper price bound")
		minRating  = pflag.Float64("min-rating", 0, "minimum rating")
		timeout    = pflag.Duration("timeout", 10*time.Second, "request timeout")
		verbose    = pflag.BoolP("verbose", "v", false, "log requests to stderr")
	)
	pflag.Parse()

	log := zap.NewNop()
	if *verbose {
		log = kit.NewLogger("browse", kit.WithLevel("debug"))
	}
	defer func() { _ = log.Sync() }()

	v := url.Values{}
	v.Set("category", *category)
	v.Set("search", *search)
	v.Set("page", strconv.Itoa(*page))
	v.Set("page_size", strconv.Itoa(*pageSize))
	v.Set("min_price", *minPrice)
	v.Set("max_price", *maxPrice)
	v.Set("min_rating", strconv.FormatFloat(*minRating, 'f', -1, 64))
	q := catalog.ParseQuery(v)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	b := catalog.NewBrowser(catalog.NewClient(*catalogURL), log)
	view, err := b.Load(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "browse: %v\n", err)
		os.Exit(1)
	}

	printView(os.Stdout, view)
}

func printView(w io.Writer, v catalog.View) {
	fmt.Fprintf(w, "%s: %d of %d products match\n", v.Query.Category, len(v.Filtered), len(v.Products))

	for _, p := range v.Page.Items {
		price := p.EffectivePrice().StringFixed(2)
		if p.HasDiscount() {
			price += fmt.Sprintf(" (was %s, -%g%%)", p.Price.StringFixed(2), p.DiscountPercentage)
		}
		fmt.Fprintf(w, "%4d  %-28s %-12s %4.1f  %s\n", p.ID, p.Title, p.Category, p.Rating, price)
	}

	if v.Page.TotalPages == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	fmt.Fprintf(w, "page %d of %d\n", v.Page.Number, v.Page.TotalPages)
}
