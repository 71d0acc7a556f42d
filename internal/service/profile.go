package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

// Profile serves account documents and avatar blobs for signed-in identities.
type Profile struct {
	store   model.DocumentStore
	avatars model.Storage
	logger  *logger.Logger
}

func NewProfile(store model.DocumentStore, avatars model.Storage, logger *logger.Logger) *Profile {
	return &Profile{
		store:   store,
		avatars: avatars,
		logger:  logger,
	}
}

// GetAccount returns the account of identityID, or ErrNotFound if no
// account document exists yet.
func (s *Profile) GetAccount(ctx context.Context, identityID uuid.UUID) (model.Account, error) {
	doc, err := s.store.Get(ctx, model.CollectionUsers, identityID.String())
	if err != nil {
		return model.Account{}, err
	}
	return model.AccountFromDocument(identityID, doc), nil
}

// UploadAvatar stores the avatar blob for identityID, replacing any
// previous one.
func (s *Profile) UploadAvatar(ctx context.Context, identityID uuid.UUID, reader io.Reader) error {
	if err := s.avatars.Upload(ctx, avatarKey(identityID), reader); err != nil {
		s.logger.Error("Profile service: avatar upload failed",
			"identity_id", identityID,
			"error", err.Error())
		return fmt.Errorf("failed to upload avatar: %w", err)
	}

	s.logger.Info("Profile service: avatar uploaded", "identity_id", identityID)
	return nil
}

// DownloadAvatar streams the avatar blob of identityID, or ErrNotFound.
func (s *Profile) DownloadAvatar(ctx context.Context, identityID uuid.UUID) (io.ReadCloser, error) {
	exists, err := s.avatars.Exists(ctx, avatarKey(identityID))
	if err != nil {
		return nil, fmt.Errorf("failed to check avatar existence: %w", err)
	}
	if !exists {
		return nil, model.ErrNotFound
	}

	reader, err := s.avatars.Download(ctx, avatarKey(identityID))
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}
	return reader, nil
}

// DeleteAvatar removes the avatar blob of identityID.
func (s *Profile) DeleteAvatar(ctx context.Context, identityID uuid.UUID) error {
	if err := s.avatars.Delete(ctx, avatarKey(identityID)); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}

func avatarKey(identityID uuid.UUID) string {
	return fmt.Sprintf("avatars/%s", identityID)
}
