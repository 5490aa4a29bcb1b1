package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/history"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/output"
	"github.com/mj1618/uiarec/internal/script"
	"github.com/mj1618/uiarec/internal/workspace"
)

// Handler holds API route handlers.
type Handler struct {
	ws *workspace.Workspace
}

// NewHandler creates a new Handler.
func NewHandler(ws *workspace.Workspace) *Handler {
	return &Handler{ws: ws}
}

// GetScenario handles GET /scenario.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.ws.Scenario()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.NewScenarioResult(h.ws.Path(), sc))
}

// CreateStep handles POST /steps.
func (h *Handler) CreateStep(w http.ResponseWriter, r *http.Request) {
	var req createStepRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, badRequest(err))
		return
	}
	var resp stepResponse
	err := h.ws.Update(func(sc *model.Scenario) error {
		st := sc.AddStep(req.Name)
		resp = stepResponse{ID: st.ID, Name: st.Name, Index: len(sc.Steps) - 1}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// DeleteStep handles DELETE /steps/{id}.
func (h *Handler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.ws.Update(func(sc *model.Scenario) error {
		i, ok := sc.StepIndex(id)
		if !ok {
			return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		return sc.RemoveStep(i)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAction handles POST /steps/{id}/actions.
func (h *Handler) CreateAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req createActionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, badRequest(err))
		return
	}
	a, err := req.action()
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	err = h.ws.Update(func(sc *model.Scenario) error {
		st, ok := sc.StepByID(id)
		if !ok {
			return fmt.Errorf("step %s: %w", id, model.ErrNotFound)
		}
		if req.Position == nil {
			st.AppendAction(a)
			return nil
		}
		if err := st.InsertAction(*req.Position, a); err != nil {
			return badRequest(err)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newActionResponse(a))
}

// DeleteAction handles DELETE /actions/{id}.
func (h *Handler) DeleteAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.ws.Update(func(sc *model.Scenario) error {
		e, ok := sc.ActionByID(id)
		if !ok {
			return fmt.Errorf("action %s: %w", id, model.ErrNotFound)
		}
		return e.Step.RemoveAction(e.ActionIndex)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPath handles GET /actions/{id}/path.
func (h *Handler) GetPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sc, err := h.ws.Scenario()
	if err != nil {
		writeError(w, err)
		return
	}
	e, ok := sc.ActionByID(id)
	if !ok {
		writeError(w, fmt.Errorf("action %s: %w", id, model.ErrNotFound))
		return
	}
	pa, ok := e.Action.(model.PathAction)
	if !ok {
		writeError(w, badRequest(fmt.Errorf("action %s has no element path", id)))
		return
	}
	writeJSON(w, http.StatusOK, output.NewPathResult(id, pa.Target()))
}

// EditRecord handles PUT /actions/{id}/path/{index}. The body is the
// record's enumeration text.
func (h *Handler) EditRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, badRequest(fmt.Errorf("record index: %w", err)))
		return
	}
	text, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	var result output.PathResult
	err = h.ws.Update(func(sc *model.Scenario) error {
		if err := sc.EditRecord(id, index, string(text)); err != nil {
			return err
		}
		e, _ := sc.ActionByID(id)
		result = output.NewPathResult(id, e.Action.(model.PathAction).Target())
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Compile handles GET /compile?debug=true&step=<id>&step=<id>.
func (h *Handler) Compile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := compiler.Options{StepIDs: q["step"]}
	if debug, _ := strconv.ParseBool(q.Get("debug")); debug {
		opts.Mode = script.ModeDebug
	}
	src, err := h.ws.Compile(opts)
	if err != nil {
		writeError(w, badRequest(err))
		return
	}
	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, src)
}

// Run handles POST /run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, badRequest(err))
		return
	}
	out, err := h.ws.Run(r.Context(), req.Steps, req.Debug)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{
		"run":    out.Run,
		"ok":     out.Result.OK(),
		"stdout": out.Result.Stdout,
	}
	if out.Result.Fault != nil {
		resp["location"] = output.NewLocationResult(*out.Result.Fault, out.Result.Location, out.Result.CorrelationErr)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListRuns handles GET /runs?limit=N.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	runs, err := h.ws.History(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// Correlate handles POST /correlate.
func (h *Handler) Correlate(w http.ResponseWriter, r *http.Request) {
	var req correlateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, badRequest(err))
		return
	}
	f, loc, err := h.ws.Correlate(req.Stderr)
	if err != nil && !errors.Is(err, compiler.ErrCorrelation) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output.NewLocationResult(f, loc, err))
}

// RecorderStatus handles GET /recorder.
func (h *Handler) RecorderStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Status())
}

// StartRecording handles POST /recorder/start.
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	var req recordStartRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, badRequest(err))
		return
	}
	stepID, err := h.ws.StartRecording(req.StepID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{StepID: stepID})
}

// DrainRecording handles POST /recorder/drain.
func (h *Handler) DrainRecording(w http.ResponseWriter, r *http.Request) {
	n, err := h.ws.Drain()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Drained: n})
}

// StopRecording handles POST /recorder/stop.
func (h *Handler) StopRecording(w http.ResponseWriter, r *http.Request) {
	n, err := h.ws.StopRecording()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Drained: n})
}
