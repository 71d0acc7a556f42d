package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 5 << 20

// ProfileService defines account and avatar operations.
type ProfileService interface {
	GetAccount(ctx context.Context, identityID uuid.UUID) (model.Account, error)
	UploadAvatar(ctx context.Context, identityID uuid.UUID, reader io.Reader) error
	DownloadAvatar(ctx context.Context, identityID uuid.UUID) (io.ReadCloser, error)
	DeleteAvatar(ctx context.Context, identityID uuid.UUID) error
}

// Profile handles HTTP endpoints for the authenticated account.
type Profile struct {
	profileService ProfileService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewProfile creates a new Profile handler.
func NewProfile(profileService ProfileService, contextManager model.ContextManager, logger *logger.Logger) *Profile {
	return &Profile{
		profileService: profileService,
		contextManager: contextManager,
		logger:         logger,
	}
}

type accountResponse struct {
	IdentityID string `json:"identity_id"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Me returns the account document of the authenticated identity.
func (h *Profile) Me(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	account, err := h.profileService.GetAccount(r.Context(), identityID)
	if err != nil {
		h.logger.Error("Profile handler: account lookup failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		IdentityID: account.ID.String(),
		Username:   account.Username,
		Email:      account.Email,
	})
}

// UploadAvatar stores the request body as the identity's avatar.
func (h *Profile) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	err := h.profileService.UploadAvatar(r.Context(), identityID, io.LimitReader(r.Body, maxAvatarBytes))
	if err != nil {
		h.logger.Error("Profile handler: avatar upload failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadAvatar streams the identity's avatar.
func (h *Profile) DownloadAvatar(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	reader, err := h.profileService.DownloadAvatar(r.Context(), identityID)
	if err != nil {
		h.logger.Error("Profile handler: avatar download failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("Profile handler: avatar stream interrupted",
			"identity_id", identityID,
			"error", err.Error())
	}
}

// DeleteAvatar removes the identity's avatar.
func (h *Profile) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	identityID, ok := h.contextManager.GetIdentityIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}

	if err := h.profileService.DeleteAvatar(r.Context(), identityID); err != nil {
		h.logger.Error("Profile handler: avatar delete failed",
			"identity_id", identityID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
