// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Session verification is mounted per route group, so each group chooses
    between the renewing and the read-only variant.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/sentinel/internal/platform/config"
	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/middleware"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/audit"
	"github.com/taibuivan/sentinel/internal/users/auth"
	"github.com/taibuivan/sentinel/internal/users/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets and the session
// plumbing shared by the protected groups.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when every dependency is healthy.
	Readiness http.HandlerFunc

	// Auth handles login, logout and the caller's profile.
	Auth *auth.Handler

	// History serves the caller's login history.
	History *audit.Handler

	// Admin serves the locked-account list and unlock.
	Admin *account.AdminHandler

	// Sessions verifies session cookies for the protected groups.
	Sessions *session.Manager

	// Cookies carries the session cookie attributes.
	Cookies session.Cookies

	// Roles resolves the caller's role for admin routes.
	Roles middleware.RoleResolver
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg, cfg.AllowedOriginSuffix))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		// Rendering the history must not slide the session or write cookies.
		api.Group(func(readOnly chi.Router) {
			readOnly.Use(session.Authenticate(h.Sessions, h.Cookies, session.ReadOnly))
			readOnly.Use(middleware.RequireAuth)
			readOnly.Mount("/me/login-history", h.History.Routes())
		})

		api.Group(func(admin chi.Router) {
			admin.Use(session.Authenticate(h.Sessions, h.Cookies, session.Renewing))
			admin.Use(middleware.RequireRole(h.Roles, sec.RoleAdmin))
			admin.Mount("/admin/users", h.Admin.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
