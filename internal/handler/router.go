package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/panelwise/backend/internal/handler/focusgroup"
	historyHandler "github.com/panelwise/backend/internal/handler/history"
	"github.com/panelwise/backend/internal/handler/stream"
	middlewarePkg "github.com/panelwise/backend/internal/middleware"
	historyService "github.com/panelwise/backend/internal/service/history"
	"github.com/panelwise/backend/internal/service/simulation"
	"github.com/panelwise/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(ctrl *simulation.Controller, historySvc *historyService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	focusGroupHandler := focusgroup.New(ctrl)
	streamHandler := stream.New(ctrl)
	histHandler := historyHandler.New(historySvc)

	r.Route("/api", func(api chi.Router) {
		focusGroupHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		histHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":         "ok",
				"activeSessions": ctrl.ActiveSessions(),
			})
		})
	})

	return r
}
