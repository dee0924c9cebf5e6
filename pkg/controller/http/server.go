package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/itam-hack/checkpoint/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	runRepo       interfaces.RunRepository
	jwksURL       string
	jwtIssuer     string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithRunRepository exposes run history on /api/runs
func WithRunRepository(repo interfaces.RunRepository) Option {
	return func(c *config) {
		c.runRepo = repo
	}
}

// WithAPIAuth protects /api routes with JWT verification against the
// given JWKS endpoint
func WithAPIAuth(jwksURL, issuer string) Option {
	return func(c *config) {
		c.jwksURL = jwksURL
		c.jwtIssuer = issuer
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Health check
	router.Get("/health", handleHealth)

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC)
	router.Post("/hooks/github/app", webhookHandler.Handle)

	// Run history API
	if cfg.runRepo != nil {
		var authMW func(http.Handler) http.Handler
		if cfg.jwksURL != "" {
			mw, err := AuthMiddleware(ctx, cfg.jwksURL, cfg.jwtIssuer)
			if err != nil {
				return nil, err
			}
			authMW = mw
		}

		runsHandler := NewRunsHandler(cfg.runRepo)
		router.Route("/api", func(r chi.Router) {
			if authMW != nil {
				r.Use(authMW)
			}
			r.Get("/runs", runsHandler.List)
			r.Get("/runs/{id}", runsHandler.Get)
		})
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
