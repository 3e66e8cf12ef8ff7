package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	repository    string
	hookUC        interfaces.HookUseCase
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the secret push payloads are signed with
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithRepository sets the repository directory shown by the health endpoint
func WithRepository(dir string) Option {
	return func(c *config) {
		c.repository = dir
	}
}

// WithHook mounts POST /hooks/push. A webhook secret is required with it.
func WithHook(hookUC interfaces.HookUseCase) Option {
	return func(c *config) {
		c.hookUC = hookUC
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	packagerUC interfaces.PackagerUseCase,
	historyUC interfaces.HistoryUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if historyUC == nil {
		return nil, goerr.New("history use case is required")
	}
	if cfg.hookUC != nil && cfg.webhookSecret == "" {
		return nil, goerr.New("webhook secret is required to accept push hooks")
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	health := &healthHandler{
		packagerUC: packagerUC,
		repository: cfg.repository,
	}
	router.Get("/health", health.Handle)

	history := NewHistoryHandler(historyUC)
	router.Get("/release-history/{project}/{core}", history.HandleReleaseHistory)
	router.Get("/files/{project}/{file}", history.HandleFile)

	if cfg.hookUC != nil {
		webhookHandler := NewWebhookHandler(cfg.webhookSecret, cfg.hookUC)
		router.Post("/hooks/push", webhookHandler.Handle)
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
