package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

func main() {
	service := "cart"
	log := kit.NewLogger(service, kit.LoggerOptionsFromEnv()...)
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8083")
	catalogURL := kit.Getenv("CATALOG_URL", "http://localhost:8082")

	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < 32 {
		log.Fatal("SESSION_SECRET is required and must be at least 32 chars")
	}

	store, closeFn, err := openStorage()
	if err != nil {
		log.Fatal("open cart storage failed", zap.Error(err))
	}
	defer closeFn()

	reg := prometheus.NewRegistry()
	metrics := cart.NewMetrics(reg)

	bus := EventBus.New()
	if err := cart.SubscribeNotices(bus, log, metrics); err != nil {
		log.Fatal("subscribe notices failed", zap.Error(err))
	}

	ttl := kit.GetenvDuration("SESSION_TTL", cart.DefaultSessionTTL)
	ceiling := kit.GetenvBool("CART_STOCK_CEILING", true)
	sessions := cart.NewSessions(store, func(sid string) []cart.Option {
		opts := []cart.Option{
			cart.WithNotifier(cart.BusNotifier(bus, sid)),
			cart.WithMetrics(metrics),
		}
		if ceiling {
			opts = append(opts, cart.WithStockCeiling())
		}
		return opts
	}, log, metrics, cart.WithSessionTTL(ttl))

	limiter := kit.NewIPRateLimiter(kit.GetenvInt("SESSION_RATE_PER_MIN", 30), time.Minute)
	limiter.TrustForwardedFor = kit.GetenvBool("TRUST_FORWARDED_FOR", false)

	s := &cart.Server{
		Sessions:       sessions,
		Catalog:        catalog.NewClient(catalogURL),
		Tokens:         session.NewTokenMaker(secret, ttl),
		Log:            log,
		SessionLimiter: limiter,
	}

	h := cart.NewHandler(s, cart.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage() (cart.Storage, func(), error) {
	switch kind := kit.Getenv("CART_STORE", "memory"); kind {
	case "memory":
		return cart.NewMemStore(), func() {}, nil

	case "bolt":
		s, err := cart.OpenBoltStore(kit.Getenv("CART_BOLT_PATH", "carts.db"))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case "postgres":
		db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s := cart.NewPostgresStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return s, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown CART_STORE %q", kind)
	}
}
