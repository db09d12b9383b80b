package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/catalog"
)

func product(t *testing.T, id int64) catalog.Product {
	t.Helper()
	for _, p := range catalog.SampleProducts() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no sample product %d", id)
	return catalog.Product{}
}

// metricValue reads a counter or gauge; label filters by kind when set.
func metricValue(t *testing.T, reg *prometheus.Registry, name, kind string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if kind != "" && !hasLabel(m.GetLabel(), "kind", kind) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func hasLabel[L interface {
	GetName() string
	GetValue() string
}](labels []L, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}

// failingStore rejects every write and counts attempts.
type failingStore struct {
	*MemStore
	puts int
}

var errDiskFull = errors.New("disk full")

func (s *failingStore) Put(context.Context, string, []byte) error {
	s.puts++
	return errDiskFull
}

func TestEngine_AddTwiceKeepsOneLine(t *testing.T) {
	e := NewEngine(NewMemStore())
	p := product(t, 1)

	n := e.AddItem(p)
	assert.Equal(t, NoticeAdded, n.Kind)
	assert.Equal(t, "iPhone 14 Pro added to cart", n.Message)

	n = e.AddItem(p)
	assert.Equal(t, NoticeQuantityUpdated, n.Kind)
	assert.Equal(t, "Quantity updated for iPhone 14 Pro", n.Message)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, e.TotalItems())
}

func TestEngine_Scenario(t *testing.T) {
	e := NewEngine(NewMemStore())
	p := product(t, 1)

	assert.Equal(t, 0, e.TotalItems())
	assert.True(t, e.Subtotal().IsZero())

	e.AddItem(p)
	assert.Equal(t, 1, e.TotalItems())
	assert.Equal(t, "944.99055", e.Subtotal().String())
	assert.True(t, e.Subtotal().Equal(p.EffectivePrice()))

	e.AddItem(p)
	assert.Equal(t, 2, e.TotalItems())
	assert.Len(t, e.Lines(), 1)

	n, ok := e.UpdateQuantity(p.ID, 0)
	require.True(t, ok)
	assert.Equal(t, NoticeRemoved, n.Kind)
	assert.Empty(t, e.Lines())
	assert.Equal(t, 0, e.TotalItems())
}

func TestEngine_UpdateZeroEqualsRemove(t *testing.T) {
	for _, q := range []int{0, -3} {
		a := NewEngine(NewMemStore())
		b := NewEngine(NewMemStore())
		for _, e := range []*Engine{a, b} {
			e.AddItem(product(t, 1))
			e.AddItem(product(t, 3))
		}

		na, oka := a.UpdateQuantity(3, q)
		nb, okb := b.RemoveItem(3)

		assert.Equal(t, okb, oka)
		assert.Equal(t, nb, na)
		assert.Equal(t, b.Lines(), a.Lines())
	}
}

func TestEngine_UpdateQuantity(t *testing.T) {
	e := NewEngine(NewMemStore())
	e.AddItem(product(t, 3))

	_, ok := e.UpdateQuantity(3, 7)
	assert.False(t, ok, "plain updates are silent")
	assert.Equal(t, 7, e.TotalItems())

	_, ok = e.UpdateQuantity(99, 2)
	assert.False(t, ok)
	assert.Equal(t, 7, e.TotalItems())

	_, ok = e.RemoveItem(99)
	assert.False(t, ok)
}

func TestEngine_SubtotalMatchesLines(t *testing.T) {
	e := NewEngine(NewMemStore())

	check := func() {
		t.Helper()
		want := decimal.Zero
		items := 0
		for _, l := range e.Lines() {
			want = want.Add(l.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
			items += l.Quantity
		}
		assert.True(t, want.Equal(e.Subtotal()), "subtotal %s, want %s", e.Subtotal(), want)
		assert.Equal(t, items, e.TotalItems())
	}

	ops := []func(){
		func() { e.AddItem(product(t, 1)) },
		func() { e.AddItem(product(t, 4)) },
		func() { e.AddItem(product(t, 4)) },
		func() { e.UpdateQuantity(1, 5) },
		func() { e.AddItem(product(t, 7)) },
		func() { e.RemoveItem(4) },
		func() { e.UpdateQuantity(7, 0) },
		func() { e.AddItem(product(t, 6)) },
		func() { e.UpdateQuantity(6, 3) },
		func() { e.Clear() },
		func() { e.AddItem(product(t, 2)) },
	}
	for _, op := range ops {
		op()
		check()
	}
}

func TestEngine_Snapshot(t *testing.T) {
	e := NewEngine(NewMemStore())
	e.AddItem(product(t, 3))
	e.UpdateQuantity(3, 2)
	e.AddItem(product(t, 7))

	s := e.Snapshot()
	require.Len(t, s.Items, 2)
	assert.Equal(t, "359.991", s.Items[0].UnitPrice.String())
	assert.Equal(t, "719.982", s.Items[0].LineTotal.String())
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, "1219.972", s.Subtotal.String())
	assert.True(t, s.Total.Equal(s.Subtotal))
}

func TestEngine_ExistingLineKeepsSnapshot(t *testing.T) {
	e := NewEngine(NewMemStore())
	p := product(t, 2)
	e.AddItem(p)

	p.Price = decimal.RequireFromString("1.00")
	e.AddItem(p)

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "1199.99", lines[0].Product.Price.String())
}

func TestEngine_PersistsEveryMutation(t *testing.T) {
	store := NewMemStore()
	e := NewEngine(store, WithKey("cart:test"))

	stored := func() []Line {
		t.Helper()
		data, ok, err := store.Get(context.Background(), "cart:test")
		require.NoError(t, err)
		require.True(t, ok)
		var lines []Line
		require.NoError(t, json.Unmarshal(data, &lines))
		return lines
	}

	e.AddItem(product(t, 5))
	assert.Equal(t, e.Lines(), stored())

	e.UpdateQuantity(5, 4)
	assert.Equal(t, 4, stored()[0].Quantity)

	e.RemoveItem(5)
	assert.Empty(t, stored())

	e.AddItem(product(t, 8))
	e.Clear()
	data, _, _ := store.Get(context.Background(), "cart:test")
	assert.JSONEq(t, `[]`, string(data))
}

func TestEngine_Hydrates(t *testing.T) {
	store := NewMemStore()
	first := NewEngine(store)
	first.AddItem(product(t, 1))
	first.AddItem(product(t, 1))
	first.AddItem(product(t, 6))

	second := NewEngine(store)
	assert.Equal(t, first.Lines(), second.Lines())
	assert.True(t, first.Subtotal().Equal(second.Subtotal()))
}

func TestEngine_MalformedStorageStartsEmpty(t *testing.T) {
	cases := map[string]string{
		"not json":    `{cart`,
		"wrong shape": `{"product":{"id":1},"quantity":2}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewMemStore()
			require.NoError(t, store.Put(context.Background(), DefaultKey, []byte(raw)))

			e := NewEngine(store)
			assert.Empty(t, e.Lines())
			assert.Equal(t, 0, e.TotalItems())

			e.AddItem(product(t, 2))
			assert.Equal(t, 1, e.TotalItems())
		})
	}
}

func TestEngine_HydrationDropsInvalidLines(t *testing.T) {
	store := NewMemStore()
	raw := `[
		{"product":{"id":1,"title":"a","price":"10"},"quantity":2},
		{"product":{"id":1,"title":"dup","price":"10"},"quantity":5},
		{"product":{"id":2,"title":"b","price":"3"},"quantity":0},
		{"product":{"id":0,"title":"c","price":"3"},"quantity":1}
	]`
	require.NoError(t, store.Put(context.Background(), DefaultKey, []byte(raw)))

	e := NewEngine(store)
	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].Product.Title)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestEngine_WriteFailureKeepsState(t *testing.T) {
	store := &failingStore{MemStore: NewMemStore()}
	reg := prometheus.NewRegistry()
	e := NewEngine(store, WithMetrics(NewMetrics(reg)))

	n := e.AddItem(product(t, 3))
	assert.Equal(t, NoticeAdded, n.Kind)
	e.AddItem(product(t, 3))

	assert.Equal(t, 2, e.TotalItems())
	assert.Equal(t, 2, store.puts)
	assert.Equal(t, 2.0, metricValue(t, reg, "cart_persist_failures_total", ""))
}

func TestEngine_StockCeiling(t *testing.T) {
	p := product(t, 7)
	p.Stock = 2

	e := NewEngine(NewMemStore(), WithStockCeiling())
	e.AddItem(p)
	e.AddItem(p)

	n := e.AddItem(p)
	assert.Equal(t, NoticeLimited, n.Kind)
	assert.Equal(t, "Only 2 of PlayStation 5 available", n.Message)
	assert.Equal(t, 2, e.TotalItems())

	n, ok := e.UpdateQuantity(p.ID, 10)
	require.True(t, ok)
	assert.Equal(t, NoticeLimited, n.Kind)
	assert.Equal(t, 2, e.TotalItems())

	_, ok = e.UpdateQuantity(p.ID, 1)
	assert.False(t, ok)
	assert.Equal(t, 1, e.TotalItems())
}

func TestEngine_StockCeilingOutOfStock(t *testing.T) {
	p := product(t, 8)
	p.Stock = 0

	e := NewEngine(NewMemStore(), WithStockCeiling())
	assert.Equal(t, NoticeAdded, e.AddItem(p).Kind)
	assert.Equal(t, NoticeLimited, e.AddItem(p).Kind)
	assert.Equal(t, 1, e.TotalItems())
}

func TestEngine_NoCeilingByDefault(t *testing.T) {
	p := product(t, 7)
	p.Stock = 1

	e := NewEngine(NewMemStore())
	e.AddItem(p)
	e.AddItem(p)
	e.UpdateQuantity(p.ID, 40)
	assert.Equal(t, 40, e.TotalItems())
}

func TestEngine_Notifier(t *testing.T) {
	var got []NoticeKind
	e := NewEngine(NewMemStore(), WithNotifier(NotifierFunc(func(n Notice) {
		got = append(got, n.Kind)
	})))

	e.AddItem(product(t, 1))
	e.AddItem(product(t, 1))
	e.UpdateQuantity(1, 3)
	e.RemoveItem(42)
	e.RemoveItem(1)
	e.Clear()

	assert.Equal(t, []NoticeKind{NoticeAdded, NoticeQuantityUpdated, NoticeRemoved, NoticeCleared}, got)
}
