package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/account"
	"github.com/hongminglow/gatekeeper/internal/auth"
	"github.com/hongminglow/gatekeeper/internal/config"
	"github.com/hongminglow/gatekeeper/internal/http/handlers"
	"github.com/hongminglow/gatekeeper/internal/http/respond"
	"github.com/hongminglow/gatekeeper/internal/metrics"
	"github.com/hongminglow/gatekeeper/internal/middleware"
)

// Deps are the collaborators the HTTP layer needs. All fields are required.
type Deps struct {
	Accounts *account.Service
	Tokens   auth.Verifier
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Limiter  *middleware.RateLimiter
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg.APIPrefix, cfg.CORSOrigins, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter builds the handler tree. API routes live under prefix; health
// and metrics stay at the root.
func NewRouter(prefix string, corsOrigins []string, deps Deps) http.Handler {
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Logger, deps.Metrics)
	users := handlers.NewUsersHandler(deps.Accounts, deps.Logger)

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		middleware.Logging(deps.Logger, deps.Metrics),
		middleware.Recovery(deps.Logger),
		middleware.SecurityHeaders(),
		middleware.CORS(corsOrigins),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(time.Now()))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	api := func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(deps.Limiter.Middleware())
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Tokens, deps.Logger, deps.Metrics))
			r.Get("/me", users.Me)
			r.Put("/me", users.UpdateMe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(deps.Logger, deps.Metrics))
				r.Get("/", users.List)
				r.Put("/{id}", users.Update)
				r.Delete("/{id}", users.Delete)
			})
		})
	}
	if prefix == "" {
		api(r)
	} else {
		r.Route(prefix, api)
	}

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
