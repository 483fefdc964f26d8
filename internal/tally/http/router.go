package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tally/internal/tally/metrics"
	"github.com/aussiebroadwan/tally/internal/tally/service"
	"github.com/aussiebroadwan/tally/internal/tally/store"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.Metrics

	store       store.Store
	Tokens      httpx.TokenValidator
	AuthService *service.AuthService
	TodoService *service.TodoService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Request logging wraps metrics so the logged status matches the counted one.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}
	if m != nil {
		r.middlewares = append(r.middlewares, m.HTTPMiddleware)
	}
	r.handler = httpx.Chain(r.Mux, r.middlewares...)

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTodos()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Tally API
//	@version		0.1.0
//	@description	Shared todo list protected by HS256 bearer tokens.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.HandleFunc("POST /auth/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /auth/login", h.HandleLogin)
	r.Mux.Handle("GET /auth/me", r.secured(h.HandleMe))
}

func (r *Router) registerTodos() {
	h := &TodoHandler{TodoService: r.TodoService}

	r.Mux.Handle("GET /todoitems", r.secured(h.HandleList))
	r.Mux.Handle("GET /todoitems/complete", r.secured(h.HandleListComplete))
	r.Mux.Handle("GET /todoitems/{id}", r.secured(h.HandleGet))
	r.Mux.Handle("POST /todoitems", r.secured(h.HandleCreate))
	r.Mux.Handle("PUT /todoitems/{id}", r.secured(h.HandleUpdate))
	r.Mux.Handle("DELETE /todoitems/{id}", r.secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}

// secured requires a valid bearer token before fn runs.
func (r *Router) secured(fn http.HandlerFunc) http.Handler {
	return httpx.Chain(fn, httpx.AuthnMiddleware(r.Tokens))
}
