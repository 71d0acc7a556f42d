package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chautara/identity/internal/mocks"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/testutil"
)

func newTestAuth(t *testing.T, credentials *mocks.CredentialStore) (*Auth, *mocks.RefreshTokenStore) {
	t.Helper()

	tokMan := &mocks.TokenManager{}
	tokMan.On("GenerateAccessToken", mock.Anything).Return("access", nil).Maybe()
	tokMan.On("GenerateRefreshToken", mock.Anything).Return("refresh", "jti-1", nil).Maybe()

	refreshStore := &mocks.RefreshTokenStore{}
	refreshStore.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	tokenService := NewTokenService(tokMan, refreshStore, testutil.MakeNoopLogger())
	return NewAuth(credentials, tokenService, nil, testutil.MakeNoopLogger()), refreshStore
}

func TestAuth_SignUp(t *testing.T) {
	ctx := context.Background()
	credentials := &mocks.CredentialStore{}
	credentials.On("Create", mock.Anything, mock.MatchedBy(func(c model.Credential) bool {
		return c.Email == "a@x.com" && len(c.PasswordHash) > 0
	})).Return(model.Credential{ID: uuid.New(), Email: "a@x.com"}, nil)

	a, _ := newTestAuth(t, credentials)

	var events []model.SessionEvent
	a.Subscribe(func(e model.SessionEvent) { events = append(events, e) })

	identity, tokens, err := a.SignUp(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
	assert.Equal(t, "access", tokens.Access)
	assert.Equal(t, "refresh", tokens.Refresh)

	require.Len(t, events, 1)
	require.NotNil(t, events[0].Identity)
	assert.Equal(t, identity.ID, events[0].Identity.ID)

	credentials.AssertExpectations(t)
}

func TestAuth_SignUp_WeakPassword(t *testing.T) {
	credentials := &mocks.CredentialStore{}
	a, _ := newTestAuth(t, credentials)

	_, _, err := a.SignUp(context.Background(), "a@x.com", "short")
	assert.ErrorIs(t, err, model.ErrWeakPassword)

	credentials.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuth_SignUp_EmailTaken(t *testing.T) {
	credentials := &mocks.CredentialStore{}
	credentials.On("Create", mock.Anything, mock.Anything).Return(model.Credential{}, model.ErrEmailTaken)

	a, _ := newTestAuth(t, credentials)

	_, _, err := a.SignUp(context.Background(), "a@x.com", "password123")
	assert.ErrorIs(t, err, model.ErrEmailTaken)
}

func TestAuth_SignIn(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	identityID := uuid.New()
	credentials := &mocks.CredentialStore{}
	credentials.On("GetByEmail", mock.Anything, "a@x.com").
		Return(model.Credential{ID: identityID, Email: "a@x.com", PasswordHash: hash}, nil)

	a, _ := newTestAuth(t, credentials)

	var events []model.SessionEvent
	a.Subscribe(func(e model.SessionEvent) { events = append(events, e) })

	identity, tokens, err := a.SignIn(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, identityID, identity.ID)
	assert.NotEmpty(t, tokens.Access)

	require.Len(t, events, 1)
	assert.Equal(t, identityID, events[0].IdentityID)
}

func TestAuth_SignIn_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	credentials := &mocks.CredentialStore{}
	credentials.On("GetByEmail", mock.Anything, "a@x.com").
		Return(model.Credential{ID: uuid.New(), Email: "a@x.com", PasswordHash: hash}, nil)

	a, _ := newTestAuth(t, credentials)

	_, _, err = a.SignIn(context.Background(), "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, model.ErrInvalidCredential)
}

func TestAuth_SignIn_UnknownEmail(t *testing.T) {
	credentials := &mocks.CredentialStore{}
	credentials.On("GetByEmail", mock.Anything, "missing@x.com").
		Return(model.Credential{}, model.ErrNotFound)

	a, _ := newTestAuth(t, credentials)

	// Indistinguishable from a wrong password.
	_, _, err := a.SignIn(context.Background(), "missing@x.com", "password123")
	assert.ErrorIs(t, err, model.ErrInvalidCredential)
}

func TestAuth_SignOut(t *testing.T) {
	ctx := context.Background()
	identityID := uuid.New()

	credentials := &mocks.CredentialStore{}
	a, refreshStore := newTestAuth(t, credentials)
	refreshStore.On("RevokeAllByIdentity", mock.Anything, identityID).Return(nil)

	var events []model.SessionEvent
	a.Subscribe(func(e model.SessionEvent) { events = append(events, e) })

	require.NoError(t, a.SignOut(ctx, identityID))

	require.Len(t, events, 1)
	assert.Equal(t, identityID, events[0].IdentityID)
	assert.Nil(t, events[0].Identity)

	refreshStore.AssertExpectations(t)
}

func TestAuth_NotifyClaimed(t *testing.T) {
	a, _ := newTestAuth(t, &mocks.CredentialStore{})

	identity := model.Identity{ID: uuid.New(), Email: "a@x.com"}

	var events []model.SessionEvent
	a.Subscribe(func(e model.SessionEvent) { events = append(events, e) })

	a.NotifyClaimed(identity)

	require.Len(t, events, 1)
	require.NotNil(t, events[0].Identity)
	assert.Equal(t, identity.ID, events[0].Identity.ID)
}

func TestAuth_Unsubscribe(t *testing.T) {
	a, _ := newTestAuth(t, &mocks.CredentialStore{})

	var count int
	unsubscribe := a.Subscribe(func(model.SessionEvent) { count++ })

	a.NotifyClaimed(model.Identity{ID: uuid.New()})
	unsubscribe()
	a.NotifyClaimed(model.Identity{ID: uuid.New()})

	assert.Equal(t, 1, count)
}
