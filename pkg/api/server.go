package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/samonya/pkg/auth"
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/middleware"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/pricing"
	"github.com/platinummonkey/samonya/pkg/session"
)

// SessionStore is the part of session.Manager the API drives
type SessionStore interface {
	SendOTP(ctx context.Context, contact string) (bool, error)
	Login(ctx context.Context, creds auth.Credentials) (*session.Session, error)
	Get(id string) (*session.Session, error)
	Logout(ctx context.Context, id string) error
}

// InspirationSource returns the day's dashboard inspiration
type InspirationSource interface {
	Today() catalog.DailyInspiration
}

// Options configures a Server
type Options struct {
	Sessions    SessionStore
	Catalog     catalog.Provider
	Resolver    *pricing.Resolver
	Inspiration InspirationSource
	// Limiter, when set, rate limits every route per session or client IP
	Limiter middleware.Limiter
	Logger  *observability.Logger
	Now     func() time.Time
}

// Server represents our API server
type Server struct {
	router          *mux.Router
	logger          *observability.Logger
	catalogHandlers *CatalogHandlers
	authHandlers    *AuthHandlers
	sessionHandlers *SessionHandlers
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Resolver == nil {
		opts.Resolver = pricing.NewResolver(opts.Catalog)
	}
	if opts.Inspiration == nil {
		opts.Inspiration = catalog.NewRotator(opts.Catalog, opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		router:          mux.NewRouter(),
		logger:          opts.Logger.WithField("component", "api"),
		catalogHandlers: NewCatalogHandlers(opts.Catalog, opts.Resolver, opts.Inspiration, opts.Now),
		authHandlers:    NewAuthHandlers(opts.Sessions, opts.Logger),
		sessionHandlers: NewSessionHandlers(opts.Sessions, opts.Catalog, opts.Logger),
	}
	if opts.Limiter != nil {
		s.router.Use(middleware.NewRateLimitMiddleware(opts.Limiter, opts.Logger).Handler)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.RegisterRoutes(s.catalogHandlers)
	s.RegisterRoutes(s.authHandlers)
	s.RegisterRoutes(s.sessionHandlers)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "route not found")
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// RouteRegistrar is an interface for types that can register routes
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar
func (s *Server) RegisterRoutes(registrar RouteRegistrar) {
	registrar.RegisterRoutes(s.router)
}
