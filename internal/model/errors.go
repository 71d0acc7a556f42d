package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested document or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTxConflict is returned by a document store when a transaction could not
	// commit within its retry budget because concurrent writers kept touching
	// its read set.
	ErrTxConflict = errors.New("transaction conflict")

	ErrEmailTaken        = errors.New("email is already registered")
	ErrWeakPassword      = errors.New("password is too weak")
	ErrInvalidCredential = errors.New("invalid email or password")
)

// ValidationError reports a violated username rule. Validation runs locally
// before any I/O, so a ValidationError guarantees the store was never contacted.
type ValidationError struct {
	Rule string
}

func (e *ValidationError) Error() string {
	return e.Rule
}

// NewValidationError creates a ValidationError naming the violated rule.
func NewValidationError(rule string) *ValidationError {
	return &ValidationError{Rule: rule}
}

// RejectionError is a store-level business-rule failure: the claim transaction
// aborted without mutating anything, so the operation is safe to retry.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

// Rejection reasons surfaced by the registrar. Compared by identity, so they
// are declared once here.
var (
	ErrUsernameTaken = &RejectionError{Reason: "username is already taken"}
	ErrUsernameBound = &RejectionError{Reason: "identity already has a username"}
	ErrClaimConflict = &RejectionError{Reason: "could not claim, retry"}
)

// StoreError wraps a transport or permission failure from the document store.
// It is never proof that a username is available or taken.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the given operation.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
