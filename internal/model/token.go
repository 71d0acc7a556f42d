package model

import "github.com/google/uuid"

// TokenManager issues and validates session tokens for identities.
type TokenManager interface {
	GenerateAccessToken(identityID uuid.UUID) (string, error)
	// GenerateRefreshToken returns the signed token and its JTI.
	GenerateRefreshToken(identityID uuid.UUID) (string, string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
	// ParseRefreshToken returns the identity ID and the token's JTI.
	ParseRefreshToken(token string) (uuid.UUID, string, error)
}
