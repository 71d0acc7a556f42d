package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CredentialStore defines persistence operations for sign-in credentials.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (Credential, error)
	GetByID(ctx context.Context, id uuid.UUID) (Credential, error)
	Create(ctx context.Context, credential Credential) (Credential, error)
}

// Credential is a stored email/password credential. The id doubles as the
// identity id used to key the account document.
type Credential struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
