// Package memory provides an in-process document store with the same
// transaction contract as the Postgres-backed one. It is used by unit tests
// and exercises the optimistic-concurrency path without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chautara/identity/internal/model"
)

var _ model.DocumentStore = (*Store)(nil)

type document struct {
	data      map[string]any
	version   uint64
	createdAt time.Time
	updatedAt time.Time
}

// Store holds versioned documents. Transactions read optimistically and
// validate their read set at commit; a concurrent commit to a read document
// triggers a bounded retry of the transaction body.
type Store struct {
	mu          sync.Mutex
	docs        map[string]*document
	maxAttempts int
	now         func() time.Time
}

// New creates a Store with the given transaction retry budget.
func New(maxAttempts int) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Store{
		docs:        make(map[string]*document),
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func docKey(collection, key string) string {
	return collection + "/" + key
}

func (s *Store) Get(ctx context.Context, collection, key string) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[docKey(collection, key)]
	if !ok {
		return model.Document{}, model.ErrNotFound
	}
	return model.Document{
		Collection: collection,
		Key:        key,
		Data:       cloneData(doc.data),
		CreatedAt:  doc.createdAt,
		UpdatedAt:  doc.updatedAt,
	}, nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx model.Tx) error) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.NewStoreError("transaction", err)
		}

		tx := &transaction{store: s, reads: make(map[string]uint64)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if s.commit(tx) {
			return nil
		}
	}

	return model.ErrTxConflict
}

// commit validates the read set and applies staged writes atomically.
func (s *Store) commit(tx *transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range tx.reads {
		current := uint64(0)
		if doc, ok := s.docs[key]; ok {
			current = doc.version
		}
		if current != version {
			return false
		}
	}

	now := s.now()
	for _, w := range tx.writes {
		key := docKey(w.collection, w.key)
		doc, ok := s.docs[key]
		if !ok {
			doc = &document{data: make(map[string]any), createdAt: now}
			s.docs[key] = doc
		}
		if w.merge {
			for k, v := range w.data {
				doc.data[k] = v
			}
		} else {
			doc.data = cloneData(w.data)
		}
		doc.version++
		doc.updatedAt = now
	}

	return true
}

type write struct {
	collection string
	key        string
	data       map[string]any
	merge      bool
}

type transaction struct {
	store  *Store
	reads  map[string]uint64
	writes []write
}

var _ model.Tx = (*transaction)(nil)

func (t *transaction) Get(ctx context.Context, collection, key string) (model.Document, error) {
	// Reads observe this transaction's own staged writes first.
	for i := len(t.writes) - 1; i >= 0; i-- {
		w := t.writes[i]
		if w.collection == collection && w.key == key {
			return model.Document{
				Collection: collection,
				Key:        key,
				Data:       cloneData(w.data),
			}, nil
		}
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	doc, ok := t.store.docs[docKey(collection, key)]
	if !ok {
		t.reads[docKey(collection, key)] = 0
		return model.Document{}, model.ErrNotFound
	}

	t.reads[docKey(collection, key)] = doc.version
	return model.Document{
		Collection: collection,
		Key:        key,
		Data:       cloneData(doc.data),
		CreatedAt:  doc.createdAt,
		UpdatedAt:  doc.updatedAt,
	}, nil
}

func (t *transaction) Set(ctx context.Context, collection, key string, data map[string]any) error {
	t.writes = append(t.writes, write{collection: collection, key: key, data: cloneData(data)})
	return nil
}

func (t *transaction) Merge(ctx context.Context, collection, key string, data map[string]any) error {
	t.writes = append(t.writes, write{collection: collection, key: key, data: cloneData(data), merge: true})
	return nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
