// Package history serves the archived session transcripts.
package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	historyService "github.com/panelwise/backend/internal/service/history"
	"github.com/panelwise/backend/pkg/utils"
)

// Handler serves the history endpoints.
type Handler struct {
	svc *historyService.Service
}

// New creates the history handler.
func New(svc *historyService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the history routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(hr chi.Router) {
		hr.Get("/", h.handleList)
		hr.Delete("/", h.handleClear)
		hr.Get("/{sessionID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.List()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"count":    len(entries),
		"sessions": entries,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	entry, ok := h.svc.Get(sessionID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found in history")
		return
	}
	utils.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	removed := h.svc.Clear()
	utils.RespondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}
