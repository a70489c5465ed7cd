// Package http provides the HTTP handlers and router for the DeepTrace API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akovalyov/deeptrace/internal/apperr"
)

// detail is the JSON error envelope returned on every failure.
type detail struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a service-layer failure into a response code. Errors
// outside the taxonomy become a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, detail{Detail: err.Error()})
	case errors.Is(err, apperr.ErrForbidden),
		errors.Is(err, apperr.ErrInvalidToken):
		writeJSON(w, http.StatusForbidden, detail{Detail: err.Error()})
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrDuplicateEmail),
		errors.Is(err, apperr.ErrInvalidCredentials),
		errors.Is(err, apperr.ErrInactiveUser),
		errors.Is(err, apperr.ErrInvalidPagination),
		errors.Is(err, apperr.ErrIllegalTransition):
		writeJSON(w, http.StatusBadRequest, detail{Detail: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, detail{Detail: "internal server error"})
	}
}
