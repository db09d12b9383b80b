package session

import (
	"context"
	"net/http"

	"Storefront/pkg/kit"
)

type ctxKey struct{}

// HeaderSessionID is set by Require to the verified session id, for access
// logs and upstream tracing. Handlers read the id from the context; the
// gateway strips any client-supplied value on public routes.
const HeaderSessionID = "X-Session-Id"

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// Require rejects requests without a valid bearer session token and stores
// the session id in the request context.
func Require(tm *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing session token", nil)
				return
			}

			claims, err := tm.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid session token", nil)
				return
			}

			r.Header.Set(HeaderSessionID, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), claims.SessionID)))
		})
	}
}
