package model

import "time"

// Contact is a single entry in a user's personal address book.
//
// UserID scopes the contact to its owner; every repository query filters on
// it, so one user's contacts are invisible to everyone else.
//
// Within one owner's collection the (FirstName, LastName, PhoneNumber) tuple
// is unique; two different owners may hold identical contacts without
// conflict.
type Contact struct {
	ID          string    `json:"id"           db:"id"`
	UserID      string    `json:"user_id"      db:"user_id"`
	FirstName   string    `json:"first_name"   db:"first_name"`
	LastName    string    `json:"last_name"    db:"last_name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Address     string    `json:"address,omitempty" db:"address"`
	CreatedAt   time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"    db:"updated_at"`
}
