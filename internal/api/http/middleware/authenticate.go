package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

// TokenService resolves identity IDs from bearer tokens.
type TokenService interface {
	GetIdentityID(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the identity ID into the
// request context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// Handle parses the Authorization header, validates the token and passes the
// request on with the identity ID set in its context. Requests without a
// valid token are rejected with 401.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		if h := r.Header.Get("Authorization"); h != "" {
			tokenString = strings.TrimPrefix(h, "Bearer ")
		}

		identityID, err := m.authenticate(r.Context(), tokenString)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		ctx := m.contextManager.SetIdentityIDToContext(r.Context(), identityID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Authenticate) authenticate(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, errMissingToken
	}

	identityID, err := m.tokenService.GetIdentityID(ctx, tokenString)
	if err != nil {
		return uuid.Nil, errInvalidToken
	}

	if identityID == uuid.Nil {
		return uuid.Nil, errInvalidToken
	}

	return identityID, nil
}
