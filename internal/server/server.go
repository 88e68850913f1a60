package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hongminglow/moneyhive-bank/internal/auth"
	"github.com/hongminglow/moneyhive-bank/internal/bank"
	"github.com/hongminglow/moneyhive-bank/internal/config"
	"github.com/hongminglow/moneyhive-bank/internal/http/handlers"
	"github.com/hongminglow/moneyhive-bank/internal/middleware"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, log zerolog.Logger) (*Server, error) {
	handler, err := NewHandler(cfg, store, log)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// NewHandler builds the routed, middleware-wrapped handler tree.
func NewHandler(cfg config.Config, store storage.Store, log zerolog.Logger) (http.Handler, error) {
	svc := bank.NewService(store, store, auth.NewHasher(cfg.Hashing), log)
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	r := mux.NewRouter()
	handlers.NewHealthHandler(time.Now()).Register(r)

	api := r.PathPrefix("/api").Subrouter()
	handlers.NewAuthHandler(svc, tokenManager, log).Register(api)
	handlers.NewFeedHandler(svc, cfg.NotificationsLimit, log).Register(api)

	pages, err := handlers.NewPagesHandler(svc, cfg.CurrencySymbol, cfg.NotificationsLimit, log)
	if err != nil {
		return nil, fmt.Errorf("init pages: %w", err)
	}
	pages.Register(r)

	return middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, r)), nil
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
