package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chautara/identity/internal/model"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation error", err: model.NewValidationError("username must not be empty"), wantStatus: http.StatusBadRequest},
		{name: "weak password", err: model.ErrWeakPassword, wantStatus: http.StatusBadRequest},
		{name: "invalid credential", err: model.ErrInvalidCredential, wantStatus: http.StatusUnauthorized},
		{name: "revoked token", err: model.ErrTokenRevoked, wantStatus: http.StatusUnauthorized},
		{name: "expired token", err: model.ErrTokenExpired, wantStatus: http.StatusUnauthorized},
		{name: "not found", err: model.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "email taken", err: model.ErrEmailTaken, wantStatus: http.StatusConflict},
		{name: "username taken", err: model.ErrUsernameTaken, wantStatus: http.StatusConflict},
		{name: "identity already bound", err: model.ErrUsernameBound, wantStatus: http.StatusConflict},
		{name: "claim conflict", err: model.ErrClaimConflict, wantStatus: http.StatusConflict},
		{name: "store error", err: model.NewStoreError("commit", assert.AnError), wantStatus: http.StatusServiceUnavailable},
		{name: "unknown error", err: assert.AnError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestHandleError_StoreErrorHidesDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handleError(rec, model.NewStoreError("commit", assert.AnError))

	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
