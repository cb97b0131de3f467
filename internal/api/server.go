// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tranquangduy/midgard/internal/character"
	"github.com/tranquangduy/midgard/internal/guild"
	"github.com/tranquangduy/midgard/internal/identity"
	"github.com/tranquangduy/midgard/internal/party"
	"github.com/tranquangduy/midgard/internal/platform/config"
	"github.com/tranquangduy/midgard/internal/platform/constants"
	"github.com/tranquangduy/midgard/internal/platform/middleware"
	"github.com/tranquangduy/midgard/internal/platform/sec"
	"github.com/tranquangduy/midgard/internal/tag"
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

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Identity exposes the resolved user profile (/me).
	Identity *identity.Handler

	// Guild handles the guild registry and membership workflow.
	Guild *guild.Handler

	// Tag manages sub-guild categorization.
	Tag *tag.Handler

	// Character manages the character roster and role grants.
	Character *character.Handler

	// Party manages party formation and slots.
	Party *party.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, resolver middleware.IdentityResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier, resolver))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix. The whole
	// command surface sits behind the shared engine key when one is configured;
	// an empty hash disables the gate for single-deployment setups.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireEngineKey(cfg.EngineAPIKeyHash, sec.CheckKeyHash))

		// Fully authenticated surfaces; everything else mixes public reads
		// with handler-level actor checks.
		api.With(middleware.RequireAuth).Mount("/me", h.Identity.Routes())
		api.With(middleware.RequireAuth).Mount("/characters", h.Character.Routes())

		api.Route("/guilds", func(guilds chi.Router) {
			guilds.Mount("/", h.Guild.Routes())

			// Collection routes scoped to a guild.
			guilds.Mount("/{guildID}/tags", h.Tag.GuildRoutes())
			guilds.Mount("/{guildID}/parties", h.Party.GuildRoutes())
		})

		api.Mount("/tags", h.Tag.Routes())
		api.Mount("/parties", h.Party.Routes())
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

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
