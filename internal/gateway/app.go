package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

type HTTPDeps = kit.HTTPDeps

type Deps struct {
	CatalogURL    string
	CartURL       string
	SessionSecret string
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	catalogProxy, err := NewReverseProxy(deps.CatalogURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("catalog proxy: %w", err)
	}
	cartProxy, err := NewReverseProxy(deps.CartURL, httpDeps.Log)
	if err != nil {
		return nil, fmt.Errorf("cart proxy: %w", err)
	}

	// Token TTL only matters when issuing, which the cart service does.
	tokens := session.NewTokenMaker(deps.SessionSecret, 0)

	r := kit.NewRouter(httpDeps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Group(func(pub chi.Router) {
		pub.Use(StripSession)

		pub.Handle("/home", catalogProxy)
		pub.Handle("/categories", catalogProxy)
		pub.Handle("/categories/*", catalogProxy)
		pub.Handle("/products", catalogProxy)
		pub.Handle("/products/*", catalogProxy)

		pub.Method(http.MethodPost, "/session", cartProxy)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(session.Require(tokens))

		pr.Method(http.MethodDelete, "/session", cartProxy)
		pr.Handle("/cart", cartProxy)
		pr.Handle("/cart/*", cartProxy)
	})

	return r, nil
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	log = kit.OrNop(log)
	upstreams := map[string]string{
		"catalog": deps.CatalogURL,
		"cart":    deps.CartURL,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for name, base := range upstreams {
			name, base := name, base
			g.Go(func() error {
				if err := checkReady(gctx, base+"/readyz"); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "upstream not ready", map[string]any{"reason": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}

	return nil
}
