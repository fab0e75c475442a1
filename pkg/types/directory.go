package types

import (
	"context"
	"errors"
	"iter"
)

// Directory is the caller-facing surface of the phonebook. Mutations go to
// the durable record store first; reads are served from the in-memory
// traversal cache only.
type Directory interface {
	// Add stores a new contact and returns it with its assigned ID.
	// Calling Add twice with the same arguments creates two contacts.
	Add(ctx context.Context, name, number string) (Contact, error)

	// Search returns the number of the first contact, in insertion order,
	// whose name matches exactly. Returns ErrNotFound if none match.
	Search(name string) (string, error)

	// List returns every contact in insertion order.
	List() []Contact

	// All yields every contact in insertion order without copying the cache.
	All() iter.Seq[Contact]

	// Delete removes every contact with the given name and returns how many
	// were removed. Returns ErrNotFound if no contact has that name.
	Delete(ctx context.Context, name string) (int, error)
}

// Lifecycle errors.
var (
	ErrDirectoryClosed = errors.New("directory is closed")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrBackendDetached = errors.New("backend is detached")
)

// Operation errors.
var (
	ErrNotFound      = errors.New("contact not found")
	ErrInvalidName   = errors.New("name must not be empty")
	ErrInvalidNumber = errors.New("number must not be empty")
)
