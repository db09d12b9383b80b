package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
)

// DefaultKey is the storage key of an engine built without WithKey.
const DefaultKey = "cart"

const storageTimeout = 3 * time.Second

// Engine owns one shopper's cart. Operations are serialized, so each one
// applies atomically to the lines. After every mutation the full line list
// is written to storage; write failures are logged and never returned.
type Engine struct {
	mu     sync.Mutex
	lines  []Line
	closed bool

	store        Storage
	key          string
	notify       Notifier
	log          *zap.Logger
	metrics      *Metrics
	stockCeiling bool
}

type Option func(*Engine)

func WithKey(key string) Option {
	return func(e *Engine) { e.key = key }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notify = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithStockCeiling caps every line at the product's stock (at least 1).
// Without it quantities are taken verbatim.
func WithStockCeiling() Option {
	return func(e *Engine) { e.stockCeiling = true }
}

// NewEngine builds an engine and hydrates it with one read from store.
// Missing or unreadable data yields an empty cart.
func NewEngine(store Storage, opts ...Option) *Engine {
	e := &Engine{
		lines:  []Line{},
		store:  store,
		key:    DefaultKey,
		notify: nopNotifier,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.hydrate()
	return e
}

func (e *Engine) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	data, ok, err := e.store.Get(ctx, e.key)
	if err != nil {
		e.log.Error("could not read saved cart", zap.String("key", e.key), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	lines, dropped, err := decodeLines(data)
	if err != nil {
		e.log.Warn("could not parse saved cart", zap.String("key", e.key), zap.Error(err))
		return
	}
	if dropped > 0 {
		e.log.Warn("dropped invalid saved cart lines", zap.String("key", e.key), zap.Int("dropped", dropped))
	}
	e.lines = lines
}

func (e *Engine) Key() string { return e.key }

// AddItem puts one more unit of p in the cart, appending a line if p is new.
func (e *Engine) AddItem(p catalog.Product) Notice {
	n, _ := e.mutate(func() (Notice, bool) {
		i := e.indexOf(p.ID)
		if i < 0 {
			e.lines = append(e.lines, Line{Product: p, Quantity: 1})
			return notice(NoticeAdded, p, "%s added to cart", p.Title), true
		}

		line := &e.lines[i]
		if limit, capped := e.ceiling(line.Product); capped && line.Quantity >= limit {
			line.Quantity = limit
			return notice(NoticeLimited, line.Product, "Only %d of %s available", limit, line.Product.Title), true
		}
		line.Quantity++
		return notice(NoticeQuantityUpdated, p, "Quantity updated for %s", p.Title), true
	})
	return n
}

// RemoveItem deletes the line for productID. The notice is only emitted,
// and ok only true, when such a line existed.
func (e *Engine) RemoveItem(productID int64) (Notice, bool) {
	return e.mutate(func() (Notice, bool) {
		i := e.indexOf(productID)
		if i < 0 {
			return Notice{}, false
		}
		removed := e.lines[i].Product
		e.lines = slices.Delete(e.lines, i, i+1)
		return notice(NoticeRemoved, removed, "%s removed from cart", removed.Title), true
	})
}

// UpdateQuantity sets the quantity of an existing line; quantity <= 0
// removes it exactly like RemoveItem. A notice is emitted only for removal
// or when the stock ceiling clamped the value.
func (e *Engine) UpdateQuantity(productID int64, quantity int) (Notice, bool) {
	if quantity <= 0 {
		return e.RemoveItem(productID)
	}

	return e.mutate(func() (Notice, bool) {
		i := e.indexOf(productID)
		if i < 0 {
			return Notice{}, false
		}

		line := &e.lines[i]
		if limit, capped := e.ceiling(line.Product); capped && quantity > limit {
			line.Quantity = limit
			return notice(NoticeLimited, line.Product, "Only %d of %s available", limit, line.Product.Title), true
		}
		line.Quantity = quantity
		return Notice{}, false
	})
}

func (e *Engine) Clear() Notice {
	n, _ := e.mutate(func() (Notice, bool) {
		e.lines = []Line{}
		return Notice{Kind: NoticeCleared, Message: "Cart cleared"}, true
	})
	return n
}

func (e *Engine) Has(productID int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexOf(productID) >= 0
}

func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.lines)
}

func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalItems(e.lines)
}

func (e *Engine) Subtotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return subtotal(e.lines)
}

type LineView struct {
	Line
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Snapshot is a consistent read of the cart and its derived totals.
// Shipping is free, so Total equals Subtotal.
type Snapshot struct {
	Items      []LineView      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]LineView, 0, len(e.lines))
	for _, l := range e.lines {
		items = append(items, LineView{Line: l, UnitPrice: l.Product.EffectivePrice(), LineTotal: l.Total()})
	}

	sub := subtotal(e.lines)
	return Snapshot{
		Items:      items,
		TotalItems: totalItems(e.lines),
		Subtotal:   sub,
		Total:      sub,
	}
}

// discard empties the cart, deletes its storage key and stops further
// writes. Used when the owning session ends.
func (e *Engine) discard(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.lines = []Line{}
	return e.store.Delete(ctx, e.key)
}

func (e *Engine) mutate(fn func() (Notice, bool)) (Notice, bool) {
	e.mu.Lock()
	n, emit := fn()
	e.persistLocked()
	e.mu.Unlock()

	if emit {
		e.notify.Notify(n)
	}
	return n, emit
}

func (e *Engine) persistLocked() {
	if e.closed {
		return
	}

	data, err := encodeLines(e.lines)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		err = e.store.Put(ctx, e.key, data)
		cancel()
	}
	if err != nil {
		e.log.Error("could not save cart", zap.String("key", e.key), zap.Error(err))
		if e.metrics != nil {
			e.metrics.PersistFailures.Inc()
		}
	}
}

func (e *Engine) indexOf(productID int64) int {
	return slices.IndexFunc(e.lines, func(l Line) bool { return l.Product.ID == productID })
}

func (e *Engine) ceiling(p catalog.Product) (int, bool) {
	if !e.stockCeiling {
		return 0, false
	}
	return max(p.Stock, 1), true
}

func totalItems(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

func notice(kind NoticeKind, p catalog.Product, format string, args ...any) Notice {
	return Notice{Kind: kind, ProductID: p.ID, Message: fmt.Sprintf(format, args...)}
}
