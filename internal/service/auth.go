package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

const minPasswordLength = 8

// AuthMetrics records identity provider outcomes.
type AuthMetrics interface {
	RecordSignUp()
	RecordSignIn()
}

// Auth is the identity provider: it owns credential verification and the
// session lifecycle, and publishes a notification for every session
// transition so nothing reads ambient session state.
type Auth struct {
	credentials  model.CredentialStore
	tokenService *TokenService
	metrics      AuthMetrics
	logger       *logger.Logger

	mu          sync.Mutex
	subscribers map[int]func(model.SessionEvent)
	nextSubID   int
}

func NewAuth(
	credentials model.CredentialStore,
	tokenService *TokenService,
	metrics AuthMetrics,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		credentials:  credentials,
		tokenService: tokenService,
		metrics:      metrics,
		logger:       logger,
		subscribers:  make(map[int]func(model.SessionEvent)),
	}
}

// SignUp creates a credential for email and signs the new identity in.
func (a *Auth) SignUp(ctx context.Context, email, password string) (model.Identity, model.TokenPair, error) {
	a.logger.Debug("Auth service: starting sign-up", "email", email)

	if len(password) < minPasswordLength {
		return model.Identity{}, model.TokenPair{}, model.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.Identity{}, model.TokenPair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	credential, err := a.credentials.Create(ctx, model.Credential{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			a.logger.Info("Auth service: email already registered", "email", email)
			return model.Identity{}, model.TokenPair{}, err
		}
		a.logger.Error("Auth service: failed to create credential",
			"email", email,
			"error", err.Error())
		return model.Identity{}, model.TokenPair{}, fmt.Errorf("failed to create credential: %w", err)
	}

	identity := model.Identity{ID: credential.ID, Email: credential.Email}

	tokens, err := a.issueAndNotify(ctx, identity)
	if err != nil {
		return model.Identity{}, model.TokenPair{}, err
	}

	a.logger.Info("Auth service: sign-up completed", "identity_id", identity.ID)
	if a.metrics != nil {
		a.metrics.RecordSignUp()
	}

	return identity, tokens, nil
}

// SignIn verifies the password for email and starts a session. Unknown
// email and wrong password are indistinguishable to the caller.
func (a *Auth) SignIn(ctx context.Context, email, password string) (model.Identity, model.TokenPair, error) {
	a.logger.Debug("Auth service: starting sign-in", "email", email)

	credential, err := a.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Identity{}, model.TokenPair{}, model.ErrInvalidCredential
		}
		a.logger.Error("Auth service: failed to get credential",
			"email", email,
			"error", err.Error())
		return model.Identity{}, model.TokenPair{}, fmt.Errorf("failed to get credential by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(credential.PasswordHash, []byte(password)); err != nil {
		a.logger.Info("Auth service: password mismatch", "identity_id", credential.ID)
		return model.Identity{}, model.TokenPair{}, model.ErrInvalidCredential
	}

	identity := model.Identity{ID: credential.ID, Email: credential.Email}

	tokens, err := a.issueAndNotify(ctx, identity)
	if err != nil {
		return model.Identity{}, model.TokenPair{}, err
	}

	a.logger.Info("Auth service: sign-in completed", "identity_id", identity.ID)
	if a.metrics != nil {
		a.metrics.RecordSignIn()
	}

	return identity, tokens, nil
}

// SignOut revokes every refresh token of identityID and publishes the
// session-ended notification.
func (a *Auth) SignOut(ctx context.Context, identityID uuid.UUID) error {
	if err := a.tokenService.RevokeAllForIdentity(ctx, identityID); err != nil {
		a.logger.Error("Auth service: failed to revoke tokens",
			"identity_id", identityID,
			"error", err.Error())
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}

	a.logger.Info("Auth service: signed out", "identity_id", identityID)
	a.publish(model.SessionEvent{IdentityID: identityID, Identity: nil})
	return nil
}

// Refresh rotates a refresh token into a new token pair.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	access, refresh, err := a.tokenService.Refresh(ctx, refreshToken)
	if err != nil {
		return model.TokenPair{}, err
	}
	return model.TokenPair{Access: access, Refresh: refresh}, nil
}

// NotifyClaimed publishes a session notification for identity after a
// successful username claim, so session controllers re-query the account.
func (a *Auth) NotifyClaimed(identity model.Identity) {
	a.publish(model.SessionEvent{IdentityID: identity.ID, Identity: &identity})
}

// Subscribe registers fn for every session transition. Events are delivered
// synchronously in publish order. The returned function unsubscribes.
func (a *Auth) Subscribe(fn func(model.SessionEvent)) func() {
	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

func (a *Auth) issueAndNotify(ctx context.Context, identity model.Identity) (model.TokenPair, error) {
	access, refresh, err := a.tokenService.Issue(ctx, identity.ID)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"identity_id", identity.ID,
			"error", err.Error())
		return model.TokenPair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.publish(model.SessionEvent{IdentityID: identity.ID, Identity: &identity})
	return model.TokenPair{Access: access, Refresh: refresh}, nil
}

func (a *Auth) publish(event model.SessionEvent) {
	a.mu.Lock()
	fns := make([]func(model.SessionEvent), 0, len(a.subscribers))
	for _, fn := range a.subscribers {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
