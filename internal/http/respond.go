package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/core"
	"moneta/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// respondError maps the domain error classes onto HTTP statuses.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errMissingUser):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrReferentialIntegrity):
		status = http.StatusConflict
	case errors.Is(err, core.ErrImport):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		respondJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}
