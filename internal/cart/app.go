package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

// ProductLookup resolves the product snapshot stored in a cart line.
type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (catalog.Product, bool, error)
}

type Server struct {
	Sessions *Sessions
	Catalog  ProductLookup
	Tokens   *session.TokenMaker
	Log      *zap.Logger

	// SessionLimiter throttles POST /session per client IP when set.
	SessionLimiter *kit.IPRateLimiter
}

const (
	maxBody        = 1 << 16
	maxAddQuantity = 100
)

type sessionResp struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type addReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity,omitempty"`
}

type updateReq struct {
	Quantity int `json:"quantity"`
}

type cartResp struct {
	Snapshot
	Notice *Notice `json:"notice,omitempty"`
}

func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	create := http.Handler(http.HandlerFunc(s.createSession))
	if s.SessionLimiter != nil {
		create = s.SessionLimiter.Middleware(create)
	}
	r.Method(http.MethodPost, "/session", create)

	r.Group(func(pr chi.Router) {
		pr.Use(session.Require(s.Tokens))
		pr.Use(s.liveSession)
		pr.Delete("/session", s.endSession)

		pr.Get("/cart", s.getCart)
		pr.Delete("/cart", s.clearCart)
		pr.Post("/cart/items", s.addItem)
		pr.Put("/cart/items/{id}", s.updateItem)
		pr.Delete("/cart/items/{id}", s.removeItem)
	})

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Sessions.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, tok, err := s.Tokens.Issue()
	if err != nil {
		s.Log.Error("issue session token failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if _, err := s.Sessions.Open(id); err != nil {
		s.Log.Error("open new session failed", zap.String("session_id", id), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, sessionResp{SessionID: id, Token: tok})
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, _ := session.IDFromContext(r.Context())
	if err := s.Sessions.End(r.Context(), id); err != nil {
		s.Log.Error("end session failed", zap.String("session_id", id), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	s.writeCart(w, e, nil)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addReq
	if err := kit.DecodeJSON(w, r, maxBody, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.ProductID <= 0 || req.Quantity < 1 || req.Quantity > maxAddQuantity {
		kit.WriteError(w, r, http.StatusBadRequest, "bad item", map[string]any{"max_quantity": maxAddQuantity})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, found, err := s.Catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		s.writeCatalogError(w, r, err, req.ProductID)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"product_id": req.ProductID})
		return
	}

	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	var n Notice
	for i := 0; i < req.Quantity; i++ {
		n = e.AddItem(p)
	}
	s.writeCart(w, e, &n)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathProductID(w, r)
	if !ok {
		return
	}

	var req updateReq
	if err := kit.DecodeJSON(w, r, maxBody, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}

	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	if !e.Has(id) {
		kit.WriteError(w, r, http.StatusNotFound, "item not in cart", map[string]any{"product_id": id})
		return
	}

	n, emitted := e.UpdateQuantity(id, req.Quantity)
	s.writeCart(w, e, noticeIf(n, emitted))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathProductID(w, r)
	if !ok {
		return
	}

	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	n, removed := e.RemoveItem(id)
	s.writeCart(w, e, noticeIf(n, removed))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	e, ok := s.engine(w, r)
	if !ok {
		return
	}
	n := e.Clear()
	s.writeCart(w, e, &n)
}

// liveSession refuses tokens whose session was ended.
func (s *Server) liveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := session.IDFromContext(r.Context())
		if s.Sessions.Ended(id) {
			kit.WriteError(w, r, http.StatusUnauthorized, "session ended", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) engine(w http.ResponseWriter, r *http.Request) (*Engine, bool) {
	id, _ := session.IDFromContext(r.Context())
	e, err := s.Sessions.Open(id)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "session ended", nil)
		return nil, false
	}
	return e, true
}

func (s *Server) writeCart(w http.ResponseWriter, e *Engine, n *Notice) {
	kit.WriteJSON(w, http.StatusOK, cartResp{Snapshot: e.Snapshot(), Notice: n})
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error, productID int64) {
	s.Log.Warn("catalog lookup failed", zap.Int64("product_id", productID), zap.Error(err))

	switch {
	case errors.Is(err, catalog.ErrCatalogUnavailable), errors.Is(err, context.DeadlineExceeded):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog unavailable", nil)
	default:
		kit.WriteError(w, r, http.StatusBadGateway, "catalog error", nil)
	}
}

func pathProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func noticeIf(n Notice, ok bool) *Notice {
	if !ok {
		return nil
	}
	return &n
}
