// Package server assembles the HTTP server: routes, middleware, and the
// storage and cache backends, plus graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nadavr/contactbook/internal/auth"
	"github.com/nadavr/contactbook/internal/cache"
	"github.com/nadavr/contactbook/internal/config"
	"github.com/nadavr/contactbook/internal/handler"
	"github.com/nadavr/contactbook/internal/middleware"
	"github.com/nadavr/contactbook/internal/repository/sqlite"
	"github.com/nadavr/contactbook/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the HTTP listener and the resources that must be closed with
// it.
type Server struct {
	httpServer *http.Server
	db         *sqlite.DB
	listings   *cache.ListingCache
	logger     *slog.Logger
}

// New wires the full stack from configuration. A missing redis address
// disables the listing cache rather than failing startup.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("server: %w", err)
	}
	passwords := auth.NewPasswordService()

	var listings *cache.ListingCache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		listings, err = cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("server: connecting to redis: %w", err)
		}
		logger.Info("listing cache enabled", "addr", cfg.RedisAddr)
	}

	userSvc := service.NewUserService(db.Users(), tokens, passwords, logger)
	contactSvc := service.NewContactService(db.Contacts(), listings, logger)

	users := handler.NewUserHandler(userSvc, logger)
	contacts := handler.NewContactHandler(contactSvc, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Post("/users", users.Register)
	r.Post("/login", users.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/contacts", contacts.Create)
		r.Get("/contacts", contacts.List)
		r.Patch("/contacts/{id}", contacts.Update)
		r.Delete("/contacts/{id}", contacts.Delete)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db:       db,
		listings: listings,
		logger:   logger,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests before
// closing the database and cache.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		s.closeResources()
		return fmt.Errorf("server: listening: %w", err)
	case sig := <-stop:
		s.logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.closeResources()
		return fmt.Errorf("server: shutdown: %w", err)
	}

	s.closeResources()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) closeResources() {
	if s.listings != nil {
		if err := s.listings.Close(); err != nil {
			s.logger.Error("closing listing cache", "error", err)
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("closing database", "error", err)
	}
}
