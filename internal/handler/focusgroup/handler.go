// Package focusgroup exposes the simulation controller over HTTP.
package focusgroup

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/panelwise/backend/internal/model/persona"
	simModel "github.com/panelwise/backend/internal/model/simulation"
	"github.com/panelwise/backend/internal/service/provider"
	"github.com/panelwise/backend/internal/service/simulation"
	"github.com/panelwise/backend/pkg/utils"
)

// Handler serves the focus group endpoints.
type Handler struct {
	ctrl *simulation.Controller
}

// New creates the focus group handler.
func New(ctrl *simulation.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes mounts the focus group routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/focus-group", func(fg chi.Router) {
		fg.Post("/simulate", h.handleSimulate)
		fg.Post("/{sessionID}/continue", h.handleContinue)
		fg.Post("/{sessionID}/inject", h.handleInject)
		fg.Post("/{sessionID}/pause", h.handlePause)
		fg.Post("/{sessionID}/resume", h.handleResume)
		fg.Get("/{sessionID}/status", h.handleStatus)
		fg.Post("/{sessionID}/complete", h.handleComplete)
	})
}

// questionPayload accepts either a bare string or {text, afterRound}. Bare
// strings are scheduled sequentially, one per round, matching the simplest
// client shape.
type questionPayload struct {
	Text       string
	AfterRound int
	Sequential bool
}

func (q *questionPayload) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		q.Text = text
		q.Sequential = true
		return nil
	}

	var obj struct {
		Text       string `json:"text"`
		AfterRound int    `json:"afterRound"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("question must be a string or an object: %w", err)
	}
	q.Text = obj.Text
	q.AfterRound = obj.AfterRound
	return nil
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Personas       []json.RawMessage             `json:"personas"`
		Message        string                        `json:"message"`
		ImageData      string                        `json:"imageData"`
		Questions      []questionPayload             `json:"questions"`
		PersonaStyles  map[int]personaModel.Style    `json:"personaStyles"`
		OpenDiscussion bool                          `json:"openDiscussion"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	personas, err := personaModel.DecodeAll(payload.Personas)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	styles := make(map[int]personaModel.Style, len(payload.PersonaStyles))
	for idx, style := range payload.PersonaStyles {
		normalized, ok := personaModel.ParseStyle(string(style))
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, fmt.Sprintf("persona %d: unknown interaction style %q", idx, style))
			return
		}
		styles[idx] = normalized
	}

	questions := make([]simulation.QuestionSpec, len(payload.Questions))
	for i, q := range payload.Questions {
		after := q.AfterRound
		if q.Sequential {
			after = i
		}
		questions[i] = simulation.QuestionSpec{Text: q.Text, AfterRound: after}
	}

	result, err := h.ctrl.Start(r.Context(), simulation.StartRequest{
		Personas:       personas,
		Stimulus:       simModel.Stimulus{Message: payload.Message, ImageData: payload.ImageData},
		Styles:         styles,
		Questions:      questions,
		OpenDiscussion: payload.OpenDiscussion,
	})
	if err != nil {
		if result != nil {
			// Generation failed mid-processing: surface the partial
			// transcript alongside the error.
			utils.RespondJSON(w, statusFor(err), map[string]any{
				"error":  err.Error(),
				"result": result,
			})
			return
		}
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleContinue(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Message string `json:"message"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.ctrl.Continue(r.Context(), sessionID, payload.Message)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleInject(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.ctrl.Inject(r.Context(), sessionID, payload.Question)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.ctrl.Pause(sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID, "state": string(simModel.StatePaused)})
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.ctrl.Resume(sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"sessionId": sessionID, "state": string(simModel.StateRunning)})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	status, err := h.ctrl.Status(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	analytics, err := h.ctrl.Complete(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"state":     string(simModel.StateCompleted),
		"analytics": analytics,
	})
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	utils.RespondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		vErr *simulation.ValidationError
		sErr *simulation.StateError
		pErr *provider.Error
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, simulation.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &sErr):
		return http.StatusConflict
	case errors.As(err, &pErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
