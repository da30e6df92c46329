// Package stream pushes live transcript entries to websocket clients.
package stream

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/panelwise/backend/internal/service/simulation"
	"github.com/panelwise/backend/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; the websocket endpoint follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler streams a session's transcript over a websocket connection.
type Handler struct {
	ctrl *simulation.Controller
}

// New creates the stream handler.
func New(ctrl *simulation.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/focus-group/{sessionID}/ws", h.handleStream)
}

// handleStream subscribes to the session and forwards every new transcript
// entry as a JSON message. The connection closes when the session completes
// or the client goes away.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	entries, cancel, err := h.ctrl.Subscribe(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()
	defer cancel()

	log.Printf("[ws] client connected to session=%s", sessionID)

	// Drain client frames so closes are noticed; inbound content is ignored.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entry, open := <-entries:
			if !open {
				log.Printf("[ws] session=%s finished, closing stream", sessionID)
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session complete"))
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				log.Printf("[ws] write failed for session=%s: %v", sessionID, err)
				return
			}
		case <-clientGone:
			log.Printf("[ws] client left session=%s", sessionID)
			return
		case <-r.Context().Done():
			return
		}
	}
}
