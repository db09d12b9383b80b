package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/gateway"
	"Storefront/pkg/kit"
)

func main() {
	service := "gateway"
	log := kit.NewLogger(service, kit.LoggerOptionsFromEnv()...)
	defer func() { _ = log.Sync() }()

	port := kit.Getenv("PORT", "8080")

	secret := os.Getenv("SESSION_SECRET")
	if len(secret) < 32 {
		log.Fatal("SESSION_SECRET is required and must be at least 32 chars")
	}

	deps := gateway.Deps{
		SessionSecret: secret,
		CatalogURL:    kit.Getenv("CATALOG_URL", "http://catalog:8082"),
		CartURL:       kit.Getenv("CART_URL", "http://cart:8083"),
	}

	reg := prometheus.NewRegistry()
	h, err := gateway.NewHandler(deps, gateway.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	})
	if err != nil {
		log.Fatal("init gateway handler failed", zap.Error(err))
	}

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
