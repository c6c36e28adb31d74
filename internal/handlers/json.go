package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solventa/promo-api/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeStoreError maps the repository error taxonomy onto HTTP statuses for
// the admin CRUD surface. The display surface never uses it; display
// failures degrade to "no notification" instead.
func writeStoreError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field": ve.Field,
			"error": ve.Message,
		})
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "Notification not found", http.StatusNotFound)
	case errors.Is(err, apperr.ErrStoreUnavailable):
		http.Error(w, "Storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
