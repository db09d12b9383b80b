package cart

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Notices         *prometheus.CounterVec
	OpenSessions    prometheus.Gauge
	PersistFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Notices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_notices_total",
				Help: "Cart notices by kind",
			},
			[]string{"kind"},
		),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cart_open_sessions",
			Help: "Carts currently held in memory",
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cart_persist_failures_total",
			Help: "Cart writes to durable storage that failed",
		}),
	}

	reg.MustRegister(m.Notices, m.OpenSessions, m.PersistFailures)
	return m
}
