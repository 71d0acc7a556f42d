// Package httpctx carries the authenticated identity through HTTP request
// contexts.
package httpctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/model"
)

type identityIDKey struct{}

// Manager implements model.ContextManager for HTTP requests.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetIdentityIDToContext returns a context carrying identityID.
func (m *Manager) SetIdentityIDToContext(ctx context.Context, identityID uuid.UUID) context.Context {
	return context.WithValue(ctx, identityIDKey{}, identityID)
}

// GetIdentityIDFromContext retrieves the identity ID set by the
// authentication middleware.
func (m *Manager) GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(identityIDKey{}).(uuid.UUID)
	return id, ok
}
