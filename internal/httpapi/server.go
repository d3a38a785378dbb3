// Package httpapi exposes the bookmark manager as a JSON API for the
// browser extension.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/bookmarkplus/internal/bookmarks"
	"github.com/nikbrunner/bookmarkplus/internal/logger"
	"github.com/nikbrunner/bookmarkplus/internal/version"
)

// Bookmark creation waits for favicon probing and the OpenGraph fetch.
const requestTimeout = 2 * time.Minute

// Deps is everything the handlers need.
type Deps struct {
	Manager   *bookmarks.Manager
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	// RefreshConcurrency bounds the favicon refresh batch.
	RefreshConcurrency int
}

// DefaultDeps fills in build information from the version package.
func DefaultDeps(m *bookmarks.Manager, log logger.Logger) Deps {
	return Deps{
		Manager:   m,
		Logger:    log,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
	}
}

type registrar func(r chi.Router, d Deps)

var registrars = []registrar{
	bookmarkRoutes,
	folderRoutes,
	tagRoutes,
	transferRoutes,
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the chi router with middlewares and every route.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(Log(d.Logger))
	r.Use(CORS())

	r.Get("/healthz", Healthz(d))
	r.Route("/api", func(api chi.Router) {
		for _, reg := range registrars {
			reg(api, d)
		}
	})
	return r
}

// New builds the HTTP server listening on addr.
func New(addr string, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	s := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return &Server{http: s, logger: d.Logger}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
