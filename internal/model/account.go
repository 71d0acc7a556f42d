package model

import (
	"time"

	"github.com/google/uuid"
)

// Account document field names, matching the persisted layout of the
// users collection.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldOwnerUID = "uid"
)

// Account is the document keyed by identity id in the users collection.
// Username holds the original-case string chosen by the user; it is absent
// until claimed and never reassigned afterwards.
type Account struct {
	ID        uuid.UUID
	Username  string
	Email     string
	CreatedAt time.Time
}

// HasUsername reports whether a username has been bound to this account.
func (a Account) HasUsername() bool {
	return a.Username != ""
}

// Reservation is the document keyed by lowercase username in the usernames
// collection. Its existence is proof of ownership; it is created exactly
// once per username and never mutated or deleted.
type Reservation struct {
	Username  string
	OwnerID   uuid.UUID
	CreatedAt time.Time
}

// AccountFromDocument builds an Account from its stored document.
func AccountFromDocument(id uuid.UUID, doc Document) Account {
	a := Account{ID: id, CreatedAt: doc.CreatedAt}
	if v, ok := doc.Data[FieldUsername].(string); ok {
		a.Username = v
	}
	if v, ok := doc.Data[FieldEmail].(string); ok {
		a.Email = v
	}
	return a
}

// ReservationFromDocument builds a Reservation from its stored document.
// A malformed owner id yields a zero OwnerID rather than an error: such a
// document still proves the name is taken.
func ReservationFromDocument(doc Document) Reservation {
	r := Reservation{Username: doc.Key, CreatedAt: doc.CreatedAt}
	if v, ok := doc.Data[FieldOwnerUID].(string); ok {
		if id, err := uuid.Parse(v); err == nil {
			r.OwnerID = id
		}
	}
	return r
}
