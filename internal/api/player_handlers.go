package api

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	apperrors "github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/worker"
)

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.Players.ListPlayers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.Players.GetPlayer(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.Players.DeletePlayer(r.Context(), chi.URLParam(r, "username")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQueueImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	req := models.ImportRequest{
		Username: strings.TrimSpace(chi.URLParam(r, "username")),
		Source:   r.URL.Query().Get("source"),
	}
	if req.Source == "" {
		req.Source = models.SourceLichess
	}
	if len(s.Sources) > 0 && !slices.Contains(s.Sources, req.Source) {
		handleError(w, r, apperrors.NewBadRequestError("unknown source: "+req.Source))
		return
	}
	full, err := queryBool(r, "full")
	if err != nil {
		handleError(w, r, err)
		return
	}
	req.Full = full

	if err := s.Queue.EnqueueImport(req); err != nil {
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrPoolClosed) {
			handleError(w, r, apperrors.NewUnavailableError("import queue unavailable", err))
			return
		}
		handleError(w, r, err)
		return
	}

	log.Info("queued import for %s from %s (full=%t)", req.Username, req.Source, req.Full)
	writeJSON(w, http.StatusAccepted, req)
}

func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, r, apperrors.NewValidationError("limit", "must be a non-negative integer"))
			return
		}
		limit = n
	}

	runs, err := s.Players.ListImports(r.Context(), chi.URLParam(r, "username"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// queryBool parses an optional boolean query parameter; absent means false.
func queryBool(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperrors.NewValidationError(name, "must be a boolean")
	}
	return b, nil
}
