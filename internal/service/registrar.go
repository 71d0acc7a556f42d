package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/model"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 20
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.]+$`)

// ValidateUsername checks a candidate username against the local rules:
// non-empty after trimming, length in [3,20], lowercase ASCII letters,
// digits, underscore and dot only. It performs no I/O.
func ValidateUsername(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return model.NewValidationError("username is required")
	}
	if len(trimmed) < usernameMinLength || len(trimmed) > usernameMaxLength {
		return model.NewValidationError("username must be 3-20 characters")
	}
	if !usernamePattern.MatchString(trimmed) {
		return model.NewValidationError("username may contain only lowercase letters, digits, underscore and dot")
	}
	return nil
}

// NormalizeUsername produces the reservation key for a candidate username.
func NormalizeUsername(candidate string) string {
	return strings.ToLower(strings.TrimSpace(candidate))
}

// ClaimMetrics records claim outcomes.
type ClaimMetrics interface {
	RecordClaim(result string)
}

// Registrar binds human-chosen usernames to identities. Uniqueness rides
// entirely on the document store's transaction isolation: the reservation
// existence check and the reservation write commit atomically, so two
// concurrent claims of one name can never both succeed.
type Registrar struct {
	store   model.DocumentStore
	metrics ClaimMetrics
	logger  *logger.Logger
}

func NewRegistrar(store model.DocumentStore, metrics ClaimMetrics, logger *logger.Logger) *Registrar {
	return &Registrar{
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Claim atomically reserves candidate for identityID and binds it to the
// account document. On rejection no state is mutated and the caller may
// retry with another name.
//
// A reservation already owned by identityID does not reject: the claim
// resumes and completes the account merge, so a failure between the
// reservation write and the account write converges on retry.
func (r *Registrar) Claim(ctx context.Context, identityID uuid.UUID, email, candidate string) error {
	display := strings.TrimSpace(candidate)
	if err := ValidateUsername(display); err != nil {
		r.logger.Debug("Registrar: candidate failed validation",
			"identity_id", identityID,
			"rule", err.Error())
		r.recordClaim("validation_error")
		return err
	}

	key := NormalizeUsername(display)
	uid := identityID.String()

	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx model.Tx) error {
		resume := false

		reservation, err := tx.Get(ctx, model.CollectionUsernames, key)
		switch {
		case err == nil:
			owner, _ := reservation.Data[model.FieldOwnerUID].(string)
			if owner != uid {
				return model.ErrUsernameTaken
			}
			resume = true
		case errors.Is(err, model.ErrNotFound):
		default:
			return err
		}

		account, err := tx.Get(ctx, model.CollectionUsers, uid)
		if err == nil {
			if name, _ := account.Data[model.FieldUsername].(string); name != "" {
				return model.ErrUsernameBound
			}
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		if !resume {
			if err := tx.Set(ctx, model.CollectionUsernames, key, map[string]any{
				model.FieldOwnerUID: uid,
			}); err != nil {
				return err
			}
		}

		fields := map[string]any{model.FieldUsername: display}
		if email != "" {
			fields[model.FieldEmail] = email
		}
		return tx.Merge(ctx, model.CollectionUsers, uid, fields)
	})

	switch {
	case err == nil:
		r.logger.Info("Registrar: username claimed",
			"identity_id", identityID,
			"username", key)
		r.recordClaim("success")
		return nil
	case errors.Is(err, model.ErrTxConflict):
		r.logger.Info("Registrar: claim retries exhausted",
			"identity_id", identityID,
			"username", key)
		r.recordClaim("conflict")
		return model.ErrClaimConflict
	default:
		var rejection *model.RejectionError
		if errors.As(err, &rejection) {
			r.logger.Info("Registrar: claim rejected",
				"identity_id", identityID,
				"username", key,
				"reason", rejection.Reason)
			r.recordClaim("rejected")
			return err
		}
		r.logger.Error("Registrar: claim failed",
			"identity_id", identityID,
			"username", key,
			"error", err.Error())
		r.recordClaim("store_error")
		return err
	}
}

// Available reports whether a reservation exists for candidate. It is a UI
// hint only: a store failure is surfaced as an error, never as availability.
func (r *Registrar) Available(ctx context.Context, candidate string) (bool, error) {
	if err := ValidateUsername(candidate); err != nil {
		return false, err
	}

	_, err := r.store.Get(ctx, model.CollectionUsernames, NormalizeUsername(candidate))
	if errors.Is(err, model.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Account returns the account document for identityID, or ErrNotFound if
// no account record exists yet.
func (r *Registrar) Account(ctx context.Context, identityID uuid.UUID) (model.Account, error) {
	doc, err := r.store.Get(ctx, model.CollectionUsers, identityID.String())
	if err != nil {
		return model.Account{}, err
	}
	return model.AccountFromDocument(identityID, doc), nil
}

func (r *Registrar) recordClaim(result string) {
	if r.metrics != nil {
		r.metrics.RecordClaim(result)
	}
}
