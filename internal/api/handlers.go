package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/ergast"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/service"
)

// Seasons before the championship's first year are rejected up front
const firstSeason = 1950

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidSeason), errors.Is(err, models.ErrInvalidRound):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrEventNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found; import the season schedule first"})
	case errors.Is(err, models.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		var srcErr ergast.SourceError
		if errors.As(err, &srcErr) {
			s.writeSourceError(w, r, srcErr)
			return
		}
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) writeSourceError(w http.ResponseWriter, r *http.Request, srcErr ergast.SourceError) {
	s.logger.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"source": srcErr.Source,
		"code":   srcErr.Code,
	}).Warn("Upstream request failed")

	switch srcErr.Code {
	case ergast.ErrCodeNotFound:
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case ergast.ErrCodeRateLimitExceeded:
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "upstream rate limited, try again later"})
	default:
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream data source unavailable"})
	}
}

func seasonParam(r *http.Request) (int, error) {
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil || season < firstSeason {
		return 0, models.ErrInvalidSeason
	}
	return season, nil
}

func roundParam(r *http.Request) (int, error) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || round < 1 {
		return 0, models.ErrInvalidRound
	}
	return round, nil
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.reader.GetSchedule(r.Context(), season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	round, err := roundParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.reader.GetResults(r.Context(), season, round)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ResultEntry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleImportSchedule(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	written, err := s.importer.ImportSchedule(r.Context(), season)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"events": written})
}

func (s *Server) handleImportResults(w http.ResponseWriter, r *http.Request) {
	season, err := seasonParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	round, err := roundParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.importer.ImportResults(r.Context(), season, round)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetDriverStandings(w http.ResponseWriter, r *http.Request) {
	s.handleGetStandings(w, r, service.KindDriver)
}

func (s *Server) handleGetTeamStandings(w http.ResponseWriter, r *http.Request) {
	s.handleGetStandings(w, r, service.KindConstructor)
}

func (s *Server) handleGetStandings(w http.ResponseWriter, r *http.Request, kind service.StandingsKind) {
	season, err := seasonParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries, err := s.reader.GetStandings(r.Context(), season, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.StandingEntry{}
	}

	s.writeJSON(w, http.StatusOK, entries)
}
