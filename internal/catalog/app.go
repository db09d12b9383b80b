package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

type Server struct {
	Provider Provider
	Log      *zap.Logger
}

type listResp struct {
	Category string `json:"category"`
	Page
}

func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	r.Get("/home", s.home)
	r.Get("/categories", s.categories)
	r.Get("/categories/{category}/products", s.byCategory)

	r.Get("/products", s.list)
	r.Get("/products/all", s.all)
	r.Get("/products/featured", s.featured)
	r.Get("/products/{id}", s.get)
	r.Get("/products/{id}/related", s.related)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Provider.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, Categories())
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query())

	page, err := q.Run(r.Context(), s.Provider)
	if err != nil {
		s.providerError(w, r, "list products failed", err, zap.String("category", q.Category))
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Category: q.Category, Page: page})
}

func (s *Server) all(w http.ResponseWriter, r *http.Request) {
	products, err := s.Provider.ListAll(r.Context())
	if err != nil {
		s.providerError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) byCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if category != CategoryAll && !IsCategory(category) {
		kit.WriteError(w, r, http.StatusNotFound, "unknown category", map[string]any{"category": category})
		return
	}

	products, err := s.Provider.ListByCategory(r.Context(), category)
	if err != nil {
		s.providerError(w, r, "list category failed", err, zap.String("category", category))
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n <= 0 {
		n = DefaultFeatured
	}

	products, err := s.Provider.ListFeatured(r.Context(), n)
	if err != nil {
		s.providerError(w, r, "list featured failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	h, err := LoadHome(r.Context(), s.Provider, DefaultFeatured)
	if err != nil {
		s.providerError(w, r, "load home failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, h)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	p, found, err := s.Provider.GetByID(r.Context(), id)
	if err != nil {
		s.providerError(w, r, "get product failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) related(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	d, found, err := LoadDetail(r.Context(), s.Provider, id, s.Log)
	if err != nil {
		s.providerError(w, r, "load detail failed", err, zap.Int64("id", id))
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, d.Related)
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func (s *Server) providerError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	s.Log.Error(msg, append(fields, zap.Error(err))...)
	kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
}
