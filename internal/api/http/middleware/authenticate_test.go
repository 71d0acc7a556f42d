package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chautara/identity/internal/api/http/httpctx"
	"github.com/chautara/identity/internal/testutil"
)

type fakeTokenService struct {
	identityID uuid.UUID
	err        error
}

func (f *fakeTokenService) GetIdentityID(_ context.Context, _ string) (uuid.UUID, error) {
	return f.identityID, f.err
}

func TestAuthenticate_Handle(t *testing.T) {
	t.Parallel()

	validID := uuid.New()

	tests := []struct {
		name         string
		authHeader   string
		tokenSvcID   uuid.UUID
		tokenSvcErr  error
		wantStatus   int
		wantBody     string
		wantIdentity bool
	}{
		{
			name:       "missing authorization header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"missing authorization token"}`,
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer invalid",
			tokenSvcErr: errors.New("bad token"),
			wantStatus:  http.StatusUnauthorized,
			wantBody:    `{"error":"invalid authorization token"}`,
		},
		{
			name:       "nil identity id from token",
			authHeader: "Bearer token",
			tokenSvcID: uuid.Nil,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid authorization token"}`,
		},
		{
			name:         "valid token",
			authHeader:   "Bearer token",
			tokenSvcID:   validID,
			wantStatus:   http.StatusOK,
			wantIdentity: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cm := httpctx.NewManager()
			m := NewAuthenticate(&fakeTokenService{identityID: tt.tokenSvcID, err: tt.tokenSvcErr}, cm, testutil.MakeNoopLogger())

			var gotID uuid.UUID
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = cm.GetIdentityIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			m.Handle(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantIdentity {
				assert.True(t, gotOK)
				assert.Equal(t, validID, gotID)
			} else {
				assert.False(t, gotOK)
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
