package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chautara/identity/internal/model"
)

var _ model.CredentialStore = (*CredentialRepository)(nil)

type CredentialRepository struct {
	db *Connection
}

func NewCredentialRepository(db *Connection) *CredentialRepository {
	return &CredentialRepository{
		db: db,
	}
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (model.Credential, error) {
	var credential model.Credential
	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM credentials WHERE email = $1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&credential.ID, &credential.Email, &credential.PasswordHash,
		&credential.CreatedAt, &credential.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential by email: %w", err)
	}

	return credential, nil
}

func (r *CredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Credential, error) {
	var credential model.Credential
	query := `SELECT id, email, password_hash, created_at, updated_at
			  FROM credentials WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&credential.ID, &credential.Email, &credential.PasswordHash,
		&credential.CreatedAt, &credential.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Credential{}, model.ErrNotFound
		}
		return model.Credential{}, fmt.Errorf("failed to get credential by id: %w", err)
	}

	return credential, nil
}

func (r *CredentialRepository) Create(ctx context.Context, credential model.Credential) (model.Credential, error) {
	query := `INSERT INTO credentials (id, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id, email, password_hash, created_at, updated_at`

	var saved model.Credential
	err := r.db.QueryRow(ctx, query,
		credential.ID, credential.Email, credential.PasswordHash,
	).Scan(
		&saved.ID, &saved.Email, &saved.PasswordHash, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Credential{}, model.ErrEmailTaken
		}
		return model.Credential{}, fmt.Errorf("failed to create credential: %w", err)
	}

	return saved, nil
}
