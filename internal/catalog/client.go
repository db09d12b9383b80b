package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

const clientTimeout = 3 * time.Second

// Client is a Provider backed by the catalog service's HTTP API.
type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: clientTimeout},
	}
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/readyz", nil, nil)
	return err
}

func (c *Client) ListAll(ctx context.Context) ([]Product, error) {
	var out []Product
	_, err := c.get(ctx, "/products/all", nil, &out)
	return out, err
}

func (c *Client) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	if category == CategoryAll {
		return c.ListAll(ctx)
	}
	var out []Product
	_, err := c.get(ctx, "/categories/"+url.PathEscape(category)+"/products", nil, &out)
	return out, err
}

func (c *Client) ListFeatured(ctx context.Context, n int) ([]Product, error) {
	q := url.Values{}
	if n > 0 {
		q.Set("n", strconv.Itoa(n))
	}
	var out []Product
	_, err := c.get(ctx, "/products/featured", q, &out)
	return out, err
}

func (c *Client) GetByID(ctx context.Context, id int64) (Product, bool, error) {
	var p Product
	found, err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10), nil, &p)
	if err != nil || !found {
		return Product{}, false, err
	}
	return p, true, nil
}

// get decodes a 200 response into out. A 404 reports found=false.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) (found bool, err error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case http.StatusServiceUnavailable:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, ErrCatalogUnavailable
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
