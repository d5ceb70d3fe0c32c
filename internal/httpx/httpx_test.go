package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundscene/accounts/internal/apperr"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]any{"ok": true})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestError_StatusMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{apperr.CodeUnauthenticated, http.StatusUnauthorized},
		{apperr.CodeForbidden, http.StatusForbidden},
		{apperr.CodeBadUserInput, http.StatusBadRequest},
		{apperr.CodeInvalidSort, http.StatusBadRequest},
		{apperr.CodeConflict, http.StatusConflict},
		{apperr.CodeNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, apperr.New(tt.code, "boom"))
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "boom", resp.Error)
			assert.Equal(t, tt.code, resp.Extensions["code"])
		})
	}
}

func TestError_KeepsExtensions(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.InvalidInput(map[string]any{"email": []string{"Enter a valid email address."}}))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid input in the following field(s): email.", resp.Error)
	assert.Contains(t, resp.Extensions, "errors")
}

func TestError_OpaqueInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
