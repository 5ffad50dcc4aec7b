// Package api exposes the cached motorsport data over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/service"
)

// Reader serves cache-first reads
type Reader interface {
	GetSchedule(ctx context.Context, season int) ([]models.ScheduleEntry, error)
	GetResults(ctx context.Context, season, round int) ([]models.ResultEntry, error)
	GetStandings(ctx context.Context, season int, kind service.StandingsKind) ([]models.StandingEntry, error)
}

// Importer triggers explicit ingestion runs
type Importer interface {
	ImportSchedule(ctx context.Context, season int) (int, error)
	ImportResults(ctx context.Context, season, round int) (*service.ResultImport, error)
}

// Server is the public HTTP API server
type Server struct {
	reader   Reader
	importer Importer
	logger   *logrus.Logger
	server   *http.Server
	port     int
}

// NewServer creates a new API server
func NewServer(reader Reader, importer Importer, port int, logger *logrus.Logger) *Server {
	return &Server{
		reader:   reader,
		importer: importer,
		logger:   logger,
		port:     port,
	}
}

// Router builds the route tree
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/f1", func(r chi.Router) {
		r.Get("/schedule/{season}", s.handleGetSchedule)
		r.Get("/results/{season}/{round}", s.handleGetResults)
		r.Post("/results/{season}/{round}/import", s.handleImportResults)
		r.Post("/schedule/{season}/import", s.handleImportSchedule)
		r.Get("/standings/drivers/{season}", s.handleGetDriverStandings)
		r.Get("/standings/teams/{season}", s.handleGetTeamStandings)
	})

	return r
}

// Start starts the API server in the background
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		s.logger.WithField("port", s.port).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
