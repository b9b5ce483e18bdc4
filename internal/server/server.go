// Package server exposes the dashboard and analysis history over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/j-veylop/medica-bottleneck-tui/internal/config"
	"github.com/j-veylop/medica-bottleneck-tui/internal/logger"
	"github.com/j-veylop/medica-bottleneck-tui/internal/models"
	"github.com/j-veylop/medica-bottleneck-tui/internal/services/analysis"
)

const shutdownTimeout = 5 * time.Second

// Backend is what the HTTP handlers need from the service manager.
type Backend interface {
	RunAnalysis(ctx context.Context) (*analysis.Result, error)
	LatestDashboard() (*models.Dashboard, error)
	RecentRuns(limit int) ([]models.AnalysisRun, error)
	VerdictHistory(scenario string, limit int) ([]models.ScenarioVerdict, error)
	BottleneckFrequency(scenario string, days int) ([]models.BottleneckFrequency, error)
	Config() *config.Config
}

// Server serves the HTTP API and the output directory.
type Server struct {
	backend Backend
	router  *chi.Mux
	srv     *http.Server
}

// New builds a server listening on addr.
func New(addr string, backend Backend) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	s := &Server{
		backend: backend,
		router:  r,
	}
	s.routes()

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "http server")
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return <-errCh
}
