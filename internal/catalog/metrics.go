package catalog

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Calls   *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_provider_calls_total",
				Help: "Catalog provider calls by operation and result",
			},
			[]string{"op", "result"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalog_provider_duration_seconds",
				Help: "Catalog provider call latency",
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.Calls, m.Latency)
	return m
}

// Instrument wraps p so every call is counted and timed.
func (m *Metrics) Instrument(p Provider) Provider {
	return &instrumented{next: p, m: m}
}

type instrumented struct {
	next Provider
	m    *Metrics
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	i.m.Latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	i.m.Calls.WithLabelValues(op, result).Inc()
}

func (i *instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *instrumented) ListAll(ctx context.Context) (out []Product, err error) {
	defer func(start time.Time) { i.observe("list_all", start, err) }(time.Now())
	return i.next.ListAll(ctx)
}

func (i *instrumented) GetByID(ctx context.Context, id int64) (p Product, ok bool, err error) {
	defer func(start time.Time) { i.observe("get_by_id", start, err) }(time.Now())
	return i.next.GetByID(ctx, id)
}

func (i *instrumented) ListByCategory(ctx context.Context, category string) (out []Product, err error) {
	defer func(start time.Time) { i.observe("list_by_category", start, err) }(time.Now())
	return i.next.ListByCategory(ctx, category)
}

func (i *instrumented) ListFeatured(ctx context.Context, n int) (out []Product, err error) {
	defer func(start time.Time) { i.observe("list_featured", start, err) }(time.Now())
	return i.next.ListFeatured(ctx, n)
}
