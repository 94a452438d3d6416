// Package http wires the transport layer: request parsing, routing and
// rendering of engine outcomes. No status code is chosen here; the engine's
// mapping is rendered as-is.
package http

import (
	"log/slog"
	"net/http"

	"github.com/vaultmind/accountd/internal/account/service"
	"github.com/vaultmind/accountd/internal/account/store"
	"github.com/vaultmind/accountd/pkg/httpx"
	"github.com/vaultmind/accountd/pkg/jwtx"
	"github.com/vaultmind/accountd/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier jwtx.Verifier
	logger   *slog.Logger
	store    store.Store

	AccountService *service.AccountService
}

func NewRouter(
	verifier jwtx.Verifier,
	allowedOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		verifier: verifier,
		logger:   logger,
		store:    st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerSystem()
}

// handle wraps a handler with the default middleware chain.
func (r *Router) handle(pattern string, h http.Handler) {
	r.Mux.Handle(pattern, httpx.Chain(h, r.middlewares...))
}

// handleAuthed additionally requires a verified session token.
func (r *Router) handleAuthed(pattern string, h http.Handler) {
	mws := append(append([]httpx.Middleware{}, r.middlewares...), httpx.AuthnMiddleware(r.verifier))
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
}
