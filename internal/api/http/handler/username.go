package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

// Username handles HTTP endpoints for username claims and availability.
type Username struct {
	registrar      RegistrarService
	authService    AuthService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUsername creates a new Username handler.
func NewUsername(registrar RegistrarService, authService AuthService, contextManager model.ContextManager, logger *logger.Logger) *Username {
	return &Username{
		registrar:      registrar,
		authService:    authService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type claimRequest struct {
	Username string `json:"username"`
}

type claimResponse struct {
	Username string `json:"username"`
}

type availabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// Claim binds a username to the authenticated identity. This is the path
// for identities created without a username, where the account already
// exists and only the claim is missing.
func (h *Username) Claim(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// The claim merges the account's email alongside the username, so carry
	// it over when the account already has one.
	var email string
	if account, err := h.registrar.Account(r.Context(), identityID); err == nil {
		email = account.Email
	}

	claimCtx, cancel := context.WithTimeout(r.Context(), claimTimeout)
	defer cancel()

	if err := h.registrar.Claim(claimCtx, identityID, email, req.Username); err != nil {
		h.logger.Error("Username handler: claim failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	h.authService.NotifyClaimed(model.Identity{ID: identityID, Email: email})

	h.logger.Info("Username handler: claim completed",
		"identity_id", identityID,
		"username", req.Username)

	writeJSON(w, http.StatusCreated, claimResponse{Username: req.Username})
}

// Availability reports whether a username looks free. The answer is a hint
// for client-side feedback only; the claim transaction is the sole
// authority, so a "true" here can still lose the race.
func (h *Username) Availability(w http.ResponseWriter, r *http.Request) {
	candidate := chi.URLParam(r, "name")

	available, err := h.registrar.Available(r.Context(), candidate)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusOK, availabilityResponse{Username: candidate, Available: false})
			return
		}
		h.logger.Error("Username handler: availability check failed",
			"username", candidate,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, availabilityResponse{Username: candidate, Available: available})
}
