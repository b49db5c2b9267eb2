// Package server exposes the quick-save HTTP surface: other applications
// hand off a URL to be saved, the way the share extension does on mobile.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mowens/linkvault/internal/assets"
	"github.com/mowens/linkvault/internal/db"
	"github.com/mowens/linkvault/internal/logger"
	"github.com/mowens/linkvault/internal/metadata"
	"github.com/mowens/linkvault/internal/store"
)

// Deps carries the server's collaborators.
type Deps struct {
	Store   *store.Store
	Assets  *assets.Store
	Fetcher *metadata.Fetcher
	Logger  logger.Logger
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http *http.Server
	log  logger.Logger
}

// New builds the HTTP server (router, middlewares, route registration).
func New(addr string, d Deps) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(accessLog(d.Logger))

	r.Get("/healthz", handleHealthz(d))
	r.Route("/api", func(r chi.Router) {
		r.Post("/links", handleCreateLink(d))
		r.Get("/links", handleListLinks(d))
		r.Get("/links/{uuid}", handleGetLink(d))
		r.Delete("/links/{uuid}", handleDeleteLink(d))
		r.Get("/links/{uuid}/favicon", handleLinkAsset(d, d.Assets.LoadFavicon))
		r.Get("/links/{uuid}/preview", handleLinkAsset(d, d.Assets.LoadPreview))
	})

	s := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{http: s, log: d.Logger}
}

// NewDeps wires Deps from a database and asset directory.
func NewDeps(database *db.DB, assetsDir string, log logger.Logger, fetchTimeout time.Duration) Deps {
	assetStore := assets.New(assetsDir, log)
	return Deps{
		Store:   store.New(database),
		Assets:  assetStore,
		Fetcher: metadata.NewFetcher(assetStore, log, fetchTimeout),
		Logger:  log,
	}
}

// Handler returns the server's root handler (for tests).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("quick-save server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
