package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/pkg/kit"
)

func main() {
	service := "catalog"
	log := kit.NewLogger(service, kit.LoggerOptionsFromEnv()...)
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8082")

	provider, closeFn, err := openProvider(log)
	if err != nil {
		log.Fatal("open catalog provider failed", zap.Error(err))
	}
	defer closeFn()

	reg := prometheus.NewRegistry()
	s := &catalog.Server{
		Provider: catalog.NewMetrics(reg).Instrument(provider),
		Log:      log,
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
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

func openProvider(log *zap.Logger) (catalog.Provider, func(), error) {
	switch store := kit.Getenv("CATALOG_STORE", "memory"); store {
	case "memory":
		var opts []catalog.MemOption
		if kit.GetenvBool("CATALOG_SIMULATE_LATENCY", false) {
			opts = append(opts, catalog.WithLatency(catalog.DefaultListLatency, catalog.DefaultGetLatency))
		}
		return catalog.NewMemProvider(opts...), func() {}, nil

	case "postgres":
		db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		p := catalog.NewPostgresProvider(db, log)
		if err := p.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		if kit.GetenvBool("CATALOG_SEED", true) {
			if err := p.Seed(ctx, catalog.SampleProducts()); err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("seed: %w", err)
			}
		}
		return p, func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown CATALOG_STORE %q", store)
	}
}
