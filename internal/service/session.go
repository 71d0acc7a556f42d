package service

import (
	"context"
	"errors"
	"sync"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

// SessionController decides which surface a client should see, driven
// solely by session notifications. It starts in SessionSignedOut and has
// no terminal state.
//
// The controller never caches the username across notifications: every
// notification with an identity re-queries the account document, so a claim
// completed elsewhere is picked up at the next notification.
type SessionController struct {
	store    model.DocumentStore
	logger   *logger.Logger
	onChange func(model.SessionState)

	mu    sync.Mutex
	state model.SessionState
}

// NewSessionController creates a controller. onChange, if non-nil, is
// invoked on every state transition (not on notifications that keep the
// state unchanged).
func NewSessionController(store model.DocumentStore, logger *logger.Logger, onChange func(model.SessionState)) *SessionController {
	return &SessionController{
		store:    store,
		logger:   logger,
		onChange: onChange,
		state:    model.SessionSignedOut,
	}
}

// State returns the current state.
func (c *SessionController) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handle processes one session notification and returns the resulting
// state. A nil identity means the session ended. The account lookup happens
// synchronously, so notifications applied in order can never be outrun by a
// stale lookup.
//
// A store failure during the lookup leaves the state unchanged: the absence
// of an answer is not evidence either way, and the next notification will
// re-query.
func (c *SessionController) Handle(ctx context.Context, identity *model.Identity) model.SessionState {
	if identity == nil {
		return c.transition(model.SessionSignedOut)
	}

	doc, err := c.store.Get(ctx, model.CollectionUsers, identity.ID.String())
	switch {
	case err == nil:
		account := model.AccountFromDocument(identity.ID, doc)
		if account.HasUsername() {
			return c.transition(model.SessionSignedInReady)
		}
		return c.transition(model.SessionSignedInNoUsername)
	case errors.Is(err, model.ErrNotFound):
		return c.transition(model.SessionSignedInNoUsername)
	default:
		c.logger.Error("Session controller: account lookup failed",
			"identity_id", identity.ID,
			"error", err.Error())
		return c.State()
	}
}

// Run consumes notifications until ctx is done or the channel closes.
func (c *SessionController) Run(ctx context.Context, notifications <-chan *model.Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case identity, ok := <-notifications:
			if !ok {
				return
			}
			c.Handle(ctx, identity)
		}
	}
}

func (c *SessionController) transition(next model.SessionState) model.SessionState {
	c.mu.Lock()
	prev := c.state
	c.state = next
	c.mu.Unlock()

	if prev != next {
		c.logger.Debug("Session controller: state changed",
			"from", prev.String(),
			"to", next.String())
		if c.onChange != nil {
			c.onChange(next)
		}
	}
	return next
}
