package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/service"
)

// SessionBus delivers session transition notifications. The returned
// function unsubscribes.
type SessionBus interface {
	Subscribe(fn func(model.SessionEvent)) func()
}

// Session handles HTTP endpoints exposing the session state machine.
type Session struct {
	store          model.DocumentStore
	bus            SessionBus
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewSession creates a new Session handler.
func NewSession(store model.DocumentStore, bus SessionBus, contextManager model.ContextManager, logger *logger.Logger) *Session {
	return &Session{
		store:          store,
		bus:            bus,
		contextManager: contextManager,
		logger:         logger,
	}
}

type stateResponse struct {
	State   string `json:"state"`
	Surface string `json:"surface"`
}

// State returns the current session state for the authenticated identity.
// The account document is queried fresh on every call, so a claim completed
// elsewhere is reflected immediately.
func (h *Session) State(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	state, err := h.resolveState(r.Context(), identityID)
	if err != nil {
		h.logger.Error("Session handler: state lookup failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{State: state.String(), Surface: state.Surface()})
}

// Stream sends session state transitions for the authenticated identity as
// server-sent events. The first event carries the current state; subsequent
// events follow the session notification bus.
func (h *Session) Stream(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	states := make(chan model.SessionState, 16)
	controller := service.NewSessionController(h.store, h.logger, func(state model.SessionState) {
		// Non-blocking: a slow client must not stall the notification bus.
		select {
		case states <- state:
		default:
		}
	})

	unsubscribe := h.bus.Subscribe(func(event model.SessionEvent) {
		if event.IdentityID != identityID {
			return
		}
		controller.Handle(r.Context(), event.Identity)
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	// Seed the stream with the state as of now. The controller itself stays
	// on its initial state until the first bus event, so the seed is read
	// directly instead of driven through it.
	if state, err := h.resolveState(r.Context(), identityID); err == nil {
		writeStateEvent(w, state)
		flusher.Flush()
	} else {
		h.logger.Error("Session handler: stream seed lookup failed",
			"identity_id", identityID,
			"error", err.Error())
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-states:
			writeStateEvent(w, state)
			flusher.Flush()
		}
	}
}

// resolveState derives the session state from the account document. The
// identity is authenticated, so the answer is never SessionSignedOut; a
// store failure is returned as an error instead of a guessed state.
func (h *Session) resolveState(ctx context.Context, identityID uuid.UUID) (model.SessionState, error) {
	doc, err := h.store.Get(ctx, model.CollectionUsers, identityID.String())
	if errors.Is(err, model.ErrNotFound) {
		return model.SessionSignedInNoUsername, nil
	}
	if err != nil {
		return model.SessionSignedOut, err
	}

	account := model.AccountFromDocument(identityID, doc)
	if account.HasUsername() {
		return model.SessionSignedInReady, nil
	}
	return model.SessionSignedInNoUsername, nil
}

func writeStateEvent(w http.ResponseWriter, state model.SessionState) {
	fmt.Fprintf(w, "event: session\ndata: {\"state\":%q,\"surface\":%q}\n\n", state.String(), state.Surface())
}
