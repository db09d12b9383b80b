package cart

import (
	"net/http"

	"Storefront/pkg/kit"
)

type HTTPDeps = kit.HTTPDeps

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.Log == nil {
		s.Log = kit.OrNop(deps.Log)
	}

	r := kit.NewRouter(deps)
	r.Mount("/", s.Routes())
	return r
}
