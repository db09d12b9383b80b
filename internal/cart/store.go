package cart

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"Storefront/internal/catalog"
)

// Line is one product-quantity pair. Its JSON form is the durable format:
// the stored cart is an array of lines.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (l Line) Total() decimal.Decimal {
	return l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Storage is a durable key-value store holding serialized carts.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func encodeLines(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// decodeLines parses a stored cart and drops entries that would break the
// one-line-per-product invariant. It reports how many entries were dropped.
func decodeLines(data []byte) ([]Line, int, error) {
	var raw []Line
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}

	out := make([]Line, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for _, l := range raw {
		if l.Quantity < 1 || l.Product.ID <= 0 {
			continue
		}
		if _, dup := seen[l.Product.ID]; dup {
			continue
		}
		seen[l.Product.ID] = struct{}{}
		out = append(out, l)
	}
	return out, len(raw) - len(out), nil
}
