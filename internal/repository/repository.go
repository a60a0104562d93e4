package repository

import (
	"context"

	"github.com/nadavr/contactbook/internal/model"
)

// ContactFilter narrows a listing to contacts whose fields contain the given
// substrings (case-insensitive). Empty fields are ignored.
type ContactFilter struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// ListOptions controls pagination of a contact listing.
// Limit <= 0 means "no limit": the full collection is returned.
type ListOptions struct {
	Limit  int
	Offset int
	Filter ContactFilter
}

type UserRepository interface {
	// Create persists a new user. Returns apperror.ErrConflict if the
	// username or email is already taken.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ContactRepository is always called with an ownerID resolved by the auth
// middleware, never with a caller-supplied one. Lookups by id are scoped to
// the owner, so a foreign contact id behaves exactly like a missing one.
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Contact, error)
	// List returns one page of the owner's contacts plus the total count of
	// contacts matching the filter (across all pages).
	List(ctx context.Context, ownerID string, opts ListOptions) ([]model.Contact, int, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, ownerID, id string) error
}
