package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/solventa/promo-api/internal/repository"
)

// StatsHandler is the admin reporting surface over the session view ledger.
type StatsHandler struct {
	views  repository.ViewRepository
	logger zerolog.Logger
}

func NewStatsHandler(views repository.ViewRepository, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		views:  views,
		logger: logger.With().Str("handler", "stats").Logger(),
	}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	filter, ok := statsFilter(w, r)
	if !ok {
		return
	}

	stats, err := h.views.Stats(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load view stats")
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	filter, ok := statsFilter(w, r)
	if !ok {
		return
	}

	if err := h.views.Reset(r.Context(), filter); err != nil {
		h.logger.Error().Err(err).Msg("failed to reset view stats")
		writeStoreError(w, err)
		return
	}

	if filter != nil {
		h.logger.Info().Int64("notification_id", *filter).Msg("view stats reset")
	} else {
		h.logger.Info().Msg("all view stats reset")
	}
	w.WriteHeader(http.StatusNoContent)
}

// statsFilter parses the optional notificationId query parameter; absent
// means all notifications.
func statsFilter(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("notificationId"))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "notificationId must be a positive integer", http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}
