package model

import "github.com/google/uuid"

// Identity is an opaque provider-issued handle for a signed-in user,
// distinct from the human-chosen username.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// TokenPair is the access/refresh pair issued on sign-in.
type TokenPair struct {
	Access  string
	Refresh string
}

// SessionEvent is a session transition notification published by the
// identity provider. Identity is nil when the session ended. Every decision
// point receives the identity from the latest notification explicitly;
// nothing reads ambient session state.
type SessionEvent struct {
	IdentityID uuid.UUID
	Identity   *Identity
}
