package gateway

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

var errNoUpstream = errors.New("upstream url must be absolute")

// NewReverseProxy forwards to target. Upstream failures become a JSON 502.
func NewReverseProxy(target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errNoUpstream
	}
	log = kit.OrNop(log)

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn("upstream request failed",
				zap.String("upstream", u.Host),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
		},
	}, nil
}

// StripSession removes any client-supplied session id header so that only
// session.Require can set it.
func StripSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(session.HeaderSessionID)
		next.ServeHTTP(w, r)
	})
}
