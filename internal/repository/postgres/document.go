package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chautara/identity/internal/model"
)

var _ model.DocumentStore = (*DocumentRepository)(nil)

// DocumentRepository stores keyed JSONB documents and runs serializable
// transactions over them. Serialization conflicts are retried up to
// maxAttempts; exhaustion surfaces as model.ErrTxConflict.
type DocumentRepository struct {
	db          *Connection
	maxAttempts int
}

func NewDocumentRepository(db *Connection, maxAttempts int) *DocumentRepository {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &DocumentRepository{
		db:          db,
		maxAttempts: maxAttempts,
	}
}

func (r *DocumentRepository) Get(ctx context.Context, collection, key string) (model.Document, error) {
	query := `SELECT data, created_at, updated_at FROM documents
			  WHERE collection = $1 AND key = $2`

	return scanDocument(r.db.QueryRow(ctx, query, collection, key), collection, key)
}

func (r *DocumentRepository) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx model.Tx) error) error {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if isSerializationFailure(err) {
			continue
		}
		return err
	}

	return model.ErrTxConflict
}

func (r *DocumentRepository) runOnce(ctx context.Context, fn func(ctx context.Context, tx model.Tx) error) error {
	pgTx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return model.NewStoreError("begin", err)
	}
	defer pgTx.Rollback(ctx)

	if err := fn(ctx, &documentTx{tx: pgTx}); err != nil {
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return model.NewStoreError("commit", err)
	}

	return nil
}

// documentTx adapts a pgx transaction to model.Tx. Writes land inside the
// open transaction and become visible to other clients only on commit.
type documentTx struct {
	tx pgx.Tx
}

func (t *documentTx) Get(ctx context.Context, collection, key string) (model.Document, error) {
	query := `SELECT data, created_at, updated_at FROM documents
			  WHERE collection = $1 AND key = $2`

	return scanDocument(t.tx.QueryRow(ctx, query, collection, key), collection, key)
}

func (t *documentTx) Set(ctx context.Context, collection, key string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document data: %w", err)
	}

	query := `INSERT INTO documents (collection, key, data)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (collection, key)
			  DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	if _, err := t.tx.Exec(ctx, query, collection, key, encoded); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return model.NewStoreError("set", err)
	}
	return nil
}

func (t *documentTx) Merge(ctx context.Context, collection, key string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document data: %w", err)
	}

	query := `INSERT INTO documents (collection, key, data)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (collection, key)
			  DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = NOW()`

	if _, err := t.tx.Exec(ctx, query, collection, key, encoded); err != nil {
		if isSerializationFailure(err) {
			return err
		}
		return model.NewStoreError("merge", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, collection, key string) (model.Document, error) {
	doc := model.Document{Collection: collection, Key: key}

	var raw []byte
	err := row.Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, model.ErrNotFound
		}
		if isSerializationFailure(err) {
			return model.Document{}, err
		}
		return model.Document{}, model.NewStoreError("get", err)
	}

	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return model.Document{}, fmt.Errorf("failed to decode document data: %w", err)
	}

	return doc, nil
}

// isSerializationFailure reports whether err is a retryable isolation
// failure: serialization_failure (40001) or deadlock_detected (40P01).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
