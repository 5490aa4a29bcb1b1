package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mj1618/uiarec/internal/compiler"
	"github.com/mj1618/uiarec/internal/model"
	"github.com/mj1618/uiarec/internal/workspace"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidPathText), errors.Is(err, errBadRequest):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, workspace.ErrNotRecording), errors.Is(err, compiler.ErrCorrelation):
		status = http.StatusConflict
	case errors.Is(err, workspace.ErrNoRecorder), errors.Is(err, workspace.ErrNoRunner):
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		slog.Error("api request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorBody(err.Error()))
}

var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}
