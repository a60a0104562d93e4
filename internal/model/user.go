// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username and email are both unique across the system; the database enforces
// this with UNIQUE constraints so concurrent signups cannot slip through.
//
// HashedPassword is a bcrypt hash; the plaintext password is never stored and
// never leaves the auth package. The json:"-" tag keeps the hash out of every
// API response, no matter which handler serializes a User.
type User struct {
	ID             string    `json:"id"       db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email"    db:"email"`
	HashedPassword string    `json:"-"        db:"hashed_password"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}
