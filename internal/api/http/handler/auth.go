package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/service"
)

// claimTimeout bounds the registration claim so a wedged store cannot hold
// the request open indefinitely.
const claimTimeout = 10 * time.Second

// AuthService defines sign-up, sign-in and session operations.
type AuthService interface {
	SignUp(ctx context.Context, email, password string) (model.Identity, model.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (model.Identity, model.TokenPair, error)
	SignOut(ctx context.Context, identityID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	NotifyClaimed(identity model.Identity)
}

// RegistrarService defines username claim operations.
type RegistrarService interface {
	Claim(ctx context.Context, identityID uuid.UUID, email, candidate string) error
	Available(ctx context.Context, candidate string) (bool, error)
	Account(ctx context.Context, identityID uuid.UUID) (model.Account, error)
}

// Auth handles HTTP endpoints for registration and authentication.
type Auth struct {
	authService    AuthService
	registrar      RegistrarService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, registrar RegistrarService, contextManager model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		registrar:      registrar,
		contextManager: contextManager,
		logger:         logger,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	IdentityID   string `json:"identity_id"`
	Username     string `json:"username,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a credential and atomically claims the requested
// username. The username is validated before the account is created, so a
// bad candidate never leaves a half-registered identity behind. If the claim
// is rejected after the account exists, the new session is signed out again
// and the unbound credential is left for a later retry.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := service.ValidateUsername(req.Username); err != nil {
		handleError(w, err)
		return
	}

	identity, tokens, err := h.authService.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign-up failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	claimCtx, cancel := context.WithTimeout(r.Context(), claimTimeout)
	defer cancel()

	if err := h.registrar.Claim(claimCtx, identity.ID, identity.Email, req.Username); err != nil {
		h.logger.Error("Auth handler: registration claim failed",
			"identity_id", identity.ID,
			"error", err.Error())

		// The credential exists but carries no username. Force the fresh
		// session out so the client lands back on a clean login surface;
		// the unbound credential stays for a future retry.
		if signOutErr := h.authService.SignOut(r.Context(), identity.ID); signOutErr != nil {
			h.logger.Error("Auth handler: compensating sign-out failed",
				"identity_id", identity.ID,
				"error", signOutErr.Error())
		}

		handleError(w, err)
		return
	}

	h.authService.NotifyClaimed(identity)

	h.logger.Info("Auth handler: registration completed",
		"identity_id", identity.ID,
		"username", req.Username)

	writeJSON(w, http.StatusCreated, sessionResponse{
		IdentityID:   identity.ID.String(),
		Username:     req.Username,
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	})
}

// Login verifies credentials and returns a token pair.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	identity, tokens, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign-in failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, err)
		return
	}

	resp := sessionResponse{
		IdentityID:   identity.ID.String(),
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
	}
	if account, err := h.registrar.Account(r.Context(), identity.ID); err == nil {
		resp.Username = account.Username
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes every refresh token of the authenticated identity.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	if err := h.authService.SignOut(r.Context(), identityID); err != nil {
		h.logger.Error("Auth handler: sign-out failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refresh rotates a refresh token into a new token pair.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh token is required"})
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: token refresh failed", "error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}
