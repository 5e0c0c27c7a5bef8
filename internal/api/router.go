// Package api serves health, metrics and read-only week summaries over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

// SummaryReader is the read side of week summary storage.
type SummaryReader interface {
	GetWeekSummary(weekStart time.Time) (models.WeekSummary, error)
	GetWeekSummaries(limit int) ([]models.WeekSummary, error)
}

// HealthCheck reports whether the service can reach its store.
type HealthCheck func() error

type handler struct {
	summaries SummaryReader
	health    HealthCheck
}

// NewRouter builds the routes and wraps them in panic recovery and an
// access log written to the application log file.
func NewRouter(summaries SummaryReader, health HealthCheck, metrics http.Handler) http.Handler {
	h := &handler{summaries: summaries, health: health}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", metrics).Methods(http.MethodGet)
	r.HandleFunc("/summaries", h.listSummaries).Methods(http.MethodGet)
	r.HandleFunc("/summaries/{week}", h.getSummary).Methods(http.MethodGet)

	recovered := handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(r)
	return handlers.CombinedLoggingHandler(logger.Writer(), recovered)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}

func (h *handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	summaries, err := h.summaries.GetWeekSummaries(limit)
	if err != nil {
		logger.Error("Listing week summaries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	if summaries == nil {
		summaries = []models.WeekSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// getSummary takes the week start as RFC 3339, e.g. 2026-01-05T18:00:00Z.
func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	week, err := time.Parse(time.RFC3339, mux.Vars(r)["week"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "week must be an RFC 3339 timestamp")
		return
	}

	summary, err := h.summaries.GetWeekSummary(week)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no summary for that week")
		return
	}
	if err != nil {
		logger.Error("Reading week summary failed", "week", week, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
