package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mj1618/uiarec/internal/workspace"
)

// NewRouter creates a chi router with all API routes mounted.
// A non-empty token enables Bearer authentication.
func NewRouter(ws *workspace.Workspace, token string, log *slog.Logger) chi.Router {
	h := NewHandler(ws)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(log))
	r.Use(AuthMiddleware(token))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Scenario editing.
	r.Get("/scenario", h.GetScenario)
	r.Post("/steps", h.CreateStep)
	r.Delete("/steps/{id}", h.DeleteStep)
	r.Post("/steps/{id}/actions", h.CreateAction)
	r.Delete("/actions/{id}", h.DeleteAction)
	r.Get("/actions/{id}/path", h.GetPath)
	r.Put("/actions/{id}/path/{index}", h.EditRecord)

	// Compile, run and fault correlation.
	r.Get("/compile", h.Compile)
	r.Post("/run", h.Run)
	r.Get("/runs", h.ListRuns)
	r.Post("/correlate", h.Correlate)

	// Recording.
	r.Get("/recorder", h.RecorderStatus)
	r.Post("/recorder/start", h.StartRecording)
	r.Post("/recorder/drain", h.DrainRecording)
	r.Post("/recorder/stop", h.StopRecording)

	return r
}
