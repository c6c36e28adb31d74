package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/solventa/promo-api/internal/repository"
)

// NotificationHandler is the admin CRUD surface over partner notifications.
type NotificationHandler struct {
	repo   repository.NotificationRepository
	logger zerolog.Logger
}

func NewNotificationHandler(repo repository.NotificationRepository, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		repo:   repo,
		logger: logger.With().Str("handler", "notification").Logger(),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	notif, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, notif)
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params repository.CreateNotificationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	notif, err := h.repo.Create(r.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create notification")
		writeStoreError(w, err)
		return
	}

	h.logger.Info().Int64("notification_id", notif.ID).Msg("notification created")
	writeJSON(w, http.StatusCreated, notif)
}

func (h *NotificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	var params repository.UpdateNotificationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	notif, err := h.repo.Update(r.Context(), id, params)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.logger.Info().Int64("notification_id", notif.ID).Msg("notification updated")
	writeJSON(w, http.StatusOK, notif)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	h.logger.Info().Int64("notification_id", id).Msg("notification deleted")
	w.WriteHeader(http.StatusNoContent)
}

func notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["notificationID"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Notification ID must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
