package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nadavr/contactbook/internal/apperror"
	"github.com/nadavr/contactbook/internal/model"
	"github.com/nadavr/contactbook/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the user-facing view of the shared connection pool.
type UserDB struct {
	db *DB
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// Create inserts a new user, generating the id and timestamps.
//
// Uniqueness of username and email is enforced by the INSERT itself (the
// UNIQUE constraints), not by a prior SELECT, so two concurrent signups with
// identical credentials cannot both succeed. A violation is reported as
// apperror.ErrConflict with a message naming the offending field.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, hashed_password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(u.conflictMessage(ctx, user))
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// conflictMessage figures out which unique field collided so the API can say
// "username already exists" vs "email already exists". Best effort: if the
// lookup itself fails we fall back to a generic message.
func (u *UserDB) conflictMessage(ctx context.Context, user *model.User) string {
	var n int
	err := u.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, user.Username,
	).Scan(&n)
	if err == nil && n > 0 {
		return "username already exists"
	}
	return "email already exists"
}

// GetByID retrieves a user by internal id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	var usr model.User

	err := u.db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, hashed_password, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&usr.ID,
		&usr.Username,
		&usr.Email,
		&usr.HashedPassword,
		&usr.CreatedAt,
		&usr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	return &usr, nil
}

// GetByEmail retrieves a user by email, for credential verification.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var usr model.User

	err := u.db.conn.QueryRowContext(ctx,
		`SELECT id, username, email, hashed_password, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(
		&usr.ID,
		&usr.Username,
		&usr.Email,
		&usr.HashedPassword,
		&usr.CreatedAt,
		&usr.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}

	return &usr, nil
}
