// Package server exposes the collection and tagging operations as a local
// JSON command API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"retagger/internal/core/tagger"
)

const shutdownTimeout = 10 * time.Second

// Server bundles the router and the services behind it.
type Server struct {
	configPath string
	tagger     *tagger.Tagger
	logger     zerolog.Logger

	// cfgMu serialises option changes: each one clones the published
	// config, edits the clone, saves it and publishes it on the tagger.
	cfgMu sync.Mutex

	router *chi.Mux
}

// New builds a server. When configPath is non-empty, option changes made
// through the API are saved there.
func New(configPath string, tg *tagger.Tagger, logger zerolog.Logger) *Server {
	s := &Server{
		configPath: configPath,
		tagger:     tg,
		logger:     logger,
		router:     chi.NewRouter(),
	}
	s.configureRoutes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) configureRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", s.handleListTracks)
			r.Post("/", s.handleAddTrack)
			r.Put("/", s.handleInsertTrack)
			r.Delete("/", s.handleRemoveTrack)
			r.Get("/item", s.handleGetTrack)
			r.Post("/reload", s.handleReloadTrack)
			r.Post("/clear", s.handleClearTracks)
			r.Post("/fetch", s.handleFetch)
			r.Post("/select", s.handleSelect)
			r.Put("/tags", s.handleUpdateTags)
			r.Post("/save", s.handleSave)
		})
		r.Post("/directory", s.handleLoadDirectory)
		r.Get("/config", s.handleListConfig)
		r.Get("/config/{name}", s.handleGetConfig)
		r.Put("/config/{name}", s.handleSetConfig)
	})
}

// requestLogger logs one line per request through zerolog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("command API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down command API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
