// Package httpx holds the small JSON response helpers shared by the
// HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soundscene/accounts/internal/apperr"
)

type ErrorResponse struct {
	Error      string         `json:"error"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// JSON writes the payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// Error renders any error. Application errors keep their message and
// extensions and map to a status by code; everything else becomes an
// opaque 500.
func Error(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error."})
		return
	}
	JSON(w, statusFor(e.Code), ErrorResponse{Error: e.Message, Extensions: e.Extensions})
}

func statusFor(code string) int {
	switch code {
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeBadUserInput, apperr.CodeInvalidSort:
		return http.StatusBadRequest
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
