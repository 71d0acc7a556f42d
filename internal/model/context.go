package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the authenticated identity through request contexts.
type ContextManager interface {
	SetIdentityIDToContext(ctx context.Context, identityID uuid.UUID) context.Context
	GetIdentityIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
