package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/solventa/promo-api/internal/eligibility"
	"github.com/solventa/promo-api/internal/models"
	"github.com/solventa/promo-api/internal/session"
)

// DisplayHandler is the public endpoint page renderers call once per page
// view to ask whether a popup should be rendered. It answers 200 with a
// definition or 204; it never reports an error to the renderer.
type DisplayHandler struct {
	engine eligibility.Engine
	logger zerolog.Logger
}

func NewDisplayHandler(engine eligibility.Engine, logger zerolog.Logger) *DisplayHandler {
	return &DisplayHandler{
		engine: engine,
		logger: logger.With().Str("handler", "display").Logger(),
	}
}

func (h *DisplayHandler) SelectForPage(w http.ResponseWriter, r *http.Request) {
	page, ok := models.ParsePage(mux.Vars(r)["page"])
	if !ok {
		http.Error(w, "Unknown page", http.StatusBadRequest)
		return
	}

	sessionID, ok := session.FromRequest(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	notif := h.engine.SelectForPage(r.Context(), page, sessionID)
	if notif == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, notif)
}

func (h *DisplayHandler) SelectForContent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	contentType := strings.TrimSpace(vars["contentType"])
	contentID, err := strconv.ParseInt(vars["contentID"], 10, 64)
	if contentType == "" || err != nil || contentID <= 0 {
		http.Error(w, "Invalid content reference", http.StatusBadRequest)
		return
	}

	sessionID, ok := session.FromRequest(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	notif := h.engine.SelectForContent(r.Context(), contentType, contentID, sessionID)
	if notif == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, notif)
}
