package db

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create would violate a uniqueness key
	// (user email, payment session id, report lesson/reporter pair).
	ErrAlreadyExists = errors.New("document already exists")
	// ErrInvalidID is returned when a document ID cannot be used by the backing store.
	ErrInvalidID = errors.New("invalid document id")
)
