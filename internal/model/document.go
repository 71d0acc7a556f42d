package model

import (
	"context"
	"time"
)

// Collections persisted in the document store.
const (
	// CollectionUsers holds account documents keyed by identity id.
	CollectionUsers = "users"
	// CollectionUsernames holds reservation documents keyed by the
	// lowercase-normalized username. Existence of a document is the
	// uniqueness enforcement mechanism.
	CollectionUsernames = "usernames"
)

// Document is a keyed record in the document store. Data carries the
// user-visible fields; timestamps are assigned by the store (server time).
type Document struct {
	Collection string
	Key        string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Tx stages reads and writes inside a document store transaction. Reads
// participate in the store's isolation contract: no other transaction can
// have committed a conflicting write to the read set between these reads
// and this transaction's commit.
type Tx interface {
	Get(ctx context.Context, collection, key string) (Document, error)
	// Set stages a full overwrite of the document's data.
	Set(ctx context.Context, collection, key string, data map[string]any) error
	// Merge stages an upsert that merges data into the existing document,
	// creating it if absent.
	Merge(ctx context.Context, collection, key string, data map[string]any) error
}

// DocumentStore holds keyed documents with atomic multi-document transactions.
type DocumentStore interface {
	// Get returns the document at key, or ErrNotFound.
	Get(ctx context.Context, collection, key string) (Document, error)
	// RunTransaction executes fn atomically. Writes staged through the Tx are
	// applied only on commit; a conflicting concurrent commit causes a bounded
	// internal retry of fn, and exhaustion surfaces as ErrTxConflict. Any
	// error returned by fn aborts the transaction without partial state.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
