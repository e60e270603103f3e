package api

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/openingstats/internal/analysis"
	apperrors "github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/report"
	"github.com/vytor/openingstats/internal/services"
)

func (s *Server) handleOpeningResults(w http.ResponseWriter, r *http.Request) {
	q, f, err := parseStatsRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	rep, err := s.Stats.OpeningResults(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeReport(w, r, f, *rep)
}

func (s *Server) handleOpeningEqualized(w http.ResponseWriter, r *http.Request) {
	q, f, err := parseStatsRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	rep, err := s.Stats.OpeningEqualized(r.Context(), q)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeReport(w, r, f, *rep)
}

func parseStatsRequest(r *http.Request) (services.StatsQuery, report.Format, error) {
	q := services.StatsQuery{
		Player: chi.URLParam(r, "username"),
		Source: r.URL.Query().Get("source"),
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(report.FormatJSON)
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return q, "", apperrors.NewValidationError("format", err.Error())
	}

	if q.Strict, err = queryBool(r, "strict"); err != nil {
		return q, "", err
	}
	if q.RejectUnknownSubject, err = queryBool(r, "reject_unknown"); err != nil {
		return q, "", err
	}
	return q, f, nil
}

// writeReport buffers the body before any header is written.
func writeReport[O analysis.Outcome](w http.ResponseWriter, r *http.Request, f report.Format, rep report.Report[O]) {
	var buf bytes.Buffer
	if err := report.Render(&buf, f, rep); err != nil {
		handleError(w, r, apperrors.NewInternalError(err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
