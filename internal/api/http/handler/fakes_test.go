package handler

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/model"
)

type claimCall struct {
	identityID uuid.UUID
	email      string
	candidate  string
}

type fakeAuthService struct {
	identity model.Identity
	tokens   model.TokenPair

	signUpErr  error
	signInErr  error
	signOutErr error
	refreshErr error

	signUpCalls  int
	signOutCalls []uuid.UUID
	notified     []model.Identity
}

func (f *fakeAuthService) SignUp(_ context.Context, _, _ string) (model.Identity, model.TokenPair, error) {
	f.signUpCalls++
	if f.signUpErr != nil {
		return model.Identity{}, model.TokenPair{}, f.signUpErr
	}
	return f.identity, f.tokens, nil
}

func (f *fakeAuthService) SignIn(_ context.Context, _, _ string) (model.Identity, model.TokenPair, error) {
	if f.signInErr != nil {
		return model.Identity{}, model.TokenPair{}, f.signInErr
	}
	return f.identity, f.tokens, nil
}

func (f *fakeAuthService) SignOut(_ context.Context, identityID uuid.UUID) error {
	f.signOutCalls = append(f.signOutCalls, identityID)
	return f.signOutErr
}

func (f *fakeAuthService) Refresh(_ context.Context, _ string) (model.TokenPair, error) {
	if f.refreshErr != nil {
		return model.TokenPair{}, f.refreshErr
	}
	return f.tokens, nil
}

func (f *fakeAuthService) NotifyClaimed(identity model.Identity) {
	f.notified = append(f.notified, identity)
}

type fakeRegistrar struct {
	claimErr     error
	claims       []claimCall
	available    bool
	availableErr error
	account      model.Account
	accountErr   error
}

func (f *fakeRegistrar) Claim(_ context.Context, identityID uuid.UUID, email, candidate string) error {
	f.claims = append(f.claims, claimCall{identityID: identityID, email: email, candidate: candidate})
	return f.claimErr
}

func (f *fakeRegistrar) Available(_ context.Context, _ string) (bool, error) {
	return f.available, f.availableErr
}

func (f *fakeRegistrar) Account(_ context.Context, _ uuid.UUID) (model.Account, error) {
	if f.accountErr != nil {
		return model.Account{}, f.accountErr
	}
	return f.account, nil
}

type fakeProfileService struct {
	account     model.Account
	accountErr  error
	avatar      []byte
	uploaded    []byte
	uploadErr   error
	downloadErr error
	deleteErr   error
	deleted     bool
}

func (f *fakeProfileService) GetAccount(_ context.Context, _ uuid.UUID) (model.Account, error) {
	if f.accountErr != nil {
		return model.Account{}, f.accountErr
	}
	return f.account, nil
}

func (f *fakeProfileService) UploadAvatar(_ context.Context, _ uuid.UUID, reader io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.uploaded = data
	return nil
}

func (f *fakeProfileService) DownloadAvatar(_ context.Context, _ uuid.UUID) (io.ReadCloser, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return io.NopCloser(bytes.NewReader(f.avatar)), nil
}

func (f *fakeProfileService) DeleteAvatar(_ context.Context, _ uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = true
	return nil
}

// fakeBus is a minimal synchronous session bus for stream tests.
type fakeBus struct {
	mu          sync.Mutex
	subscribers []func(model.SessionEvent)
}

func (f *fakeBus) Subscribe(fn func(model.SessionEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
	return func() {}
}

func (f *fakeBus) Publish(event model.SessionEvent) {
	f.mu.Lock()
	subs := append([]func(model.SessionEvent){}, f.subscribers...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}
