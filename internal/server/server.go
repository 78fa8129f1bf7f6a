// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where handlers,
// services, repositories, and middleware are connected:
//
//	config.Config → sqlite.DB → services → handlers → chi routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services (never the
// database). Keeping the wiring out of main.go makes the whole stack
// constructible from tests.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/completionist/internal/auth"
	"github.com/sakif/completionist/internal/config"
	"github.com/sakif/completionist/internal/handler"
	"github.com/sakif/completionist/internal/middleware"
	sqliteRepo "github.com/sakif/completionist/internal/repository/sqlite"
	"github.com/sakif/completionist/internal/service"
)

// Server owns the router, the configuration, and the database connection.
// The connection is closed during graceful shutdown so the WAL is flushed
// and the file lock released.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /api/health                    → liveness probe
//	POST   /api/register                  → create account + session
//	POST   /api/login                     → password login
//	POST   /api/logout                    → clear session cookie
//	GET    /auth/github/login             → start OAuth flow (optional)
//	GET    /auth/github/callback          → finish OAuth flow (optional)
//	GET    /api/community                 → browse templates
//	GET    /api/community/shared/{code}   → resolve share link
//	GET    /api/community/{id}            → template detail
//	GET    /api/me                        → current user            [auth]
//	GET    /api/games                     → list games + progress   [auth]
//	POST   /api/games                     → create game             [auth]
//	GET    /api/games/{id}                → get game                [auth]
//	PATCH  /api/games/{id}                → update game             [auth]
//	DELETE /api/games/{id}                → delete game             [auth]
//	GET    /api/games/{id}/progress       → completion stats        [auth]
//	GET    /api/games/{id}/checklist      → list checklist          [auth]
//	POST   /api/games/{id}/checklist      → add item                [auth]
//	PATCH  /api/checklist/{id}            → update item             [auth]
//	DELETE /api/checklist/{id}            → delete item             [auth]
//	POST   /api/community                 → publish template        [auth]
//	DELETE /api/community/{id}            → delete own template     [auth]
//	POST   /api/community/{id}/import     → import into game list   [auth]
//
// Community reads carry no auth middleware: a share link has to work for a
// recipient who has never signed up — the unguessable code IS the
// credential. Writes (publish, delete, import) still require a session.
//
// MIDDLEWARE ORDER MATTERS — RequestID and RealIP run first so the logger
// sees their results; Recoverer wraps everything below it.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		s.logger.Info("GitHub OAuth enabled")
	}

	// One sqlite.DB implements every repository interface; the services
	// each see only the slices they need.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	gameService := service.NewGameService(s.db, s.logger)
	checklistService := service.NewChecklistService(s.db, s.db, s.logger)
	communityService := service.NewCommunityService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	gameHandler := handler.NewGameHandler(gameService, s.logger)
	checklistHandler := handler.NewChecklistHandler(checklistService, s.logger)
	communityHandler := handler.NewCommunityHandler(communityService, s.logger)

	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HandleHealth)

		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		// Template browsing and share-link resolution are public; the
		// static /shared prefix is registered before the {id} wildcard.
		r.Get("/community", communityHandler.HandleList)
		r.Get("/community/shared/{code}", communityHandler.HandleGetShared)
		r.Get("/community/{id}", communityHandler.HandleGet)

		// Everything below requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/games", gameHandler.HandleList)
			r.Post("/games", gameHandler.HandleCreate)
			r.Get("/games/{id}", gameHandler.HandleGet)
			r.Patch("/games/{id}", gameHandler.HandleUpdate)
			r.Delete("/games/{id}", gameHandler.HandleDelete)
			r.Get("/games/{id}/progress", gameHandler.HandleProgress)

			r.Get("/games/{id}/checklist", checklistHandler.HandleList)
			r.Post("/games/{id}/checklist", checklistHandler.HandleAdd)
			r.Patch("/checklist/{id}", checklistHandler.HandleUpdate)
			r.Delete("/checklist/{id}", checklistHandler.HandleDelete)

			r.Post("/community", communityHandler.HandleCreate)
			r.Delete("/community/{id}", communityHandler.HandleDelete)
			r.Post("/community/{id}/import", communityHandler.HandleImport)
		})
	})

	return nil
}

// Handler exposes the assembled router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this itself; Close is
// for callers that never Start (tests).
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
