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

// compile-time check that *ContactDB implements repository.ContactRepository
var _ repository.ContactRepository = (*ContactDB)(nil)

// ContactDB is the contact-facing view of the shared connection pool.
type ContactDB struct {
	db *DB
}

// Contacts returns the contact repository backed by this database.
func (db *DB) Contacts() *ContactDB {
	return &ContactDB{db: db}
}

// Create inserts a new contact for its owner.
//
// The per-owner UNIQUE(user_id, first_name, last_name, phone_number) index
// does the duplicate check atomically with the insert: a concurrent identical
// create for the same owner yields exactly one success and one Conflict. The
// same tuple under a different owner inserts fine.
func (c *ContactDB) Create(ctx context.Context, contact *model.Contact) error {
	contact.ID = xid.New().String()
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO contacts (id, user_id, first_name, last_name, phone_number, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.PhoneNumber,
		contact.Address,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("contact already exists")
		}
		return fmt.Errorf("sqlite: inserting contact for user %s: %w", contact.UserID, err)
	}

	return nil
}

// GetByID retrieves a single contact, scoped to its owner.
//
// The WHERE clause matches on both id and user_id, so a contact belonging to
// someone else scans as sql.ErrNoRows, identical to a missing id.
func (c *ContactDB) GetByID(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	var ct model.Contact

	err := c.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, first_name, last_name, phone_number, address, created_at, updated_at
		 FROM contacts
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(
		&ct.ID,
		&ct.UserID,
		&ct.FirstName,
		&ct.LastName,
		&ct.PhoneNumber,
		&ct.Address,
		&ct.CreatedAt,
		&ct.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("contact", id)
		}
		return nil, fmt.Errorf("sqlite: getting contact %s: %w", id, err)
	}

	return &ct, nil
}

// List returns one page of the owner's contacts plus the total count matching
// the filter. Ordering is by primary key; xids are creation-time sortable, so
// pages are stable while no mutation happens between fetches.
//
// opts.Limit <= 0 means no LIMIT clause: the whole collection comes back.
func (c *ContactDB) List(ctx context.Context, ownerID string, opts repository.ListOptions) ([]model.Contact, int, error) {
	where := ` FROM contacts WHERE user_id = ?`
	params := []any{ownerID}

	// Optional substring filters, each case-insensitive.
	addFilter := func(column, value string) {
		if value != "" {
			where += fmt.Sprintf(" AND %s LIKE ? COLLATE NOCASE", column)
			params = append(params, "%"+value+"%")
		}
	}
	addFilter("first_name", opts.Filter.FirstName)
	addFilter("last_name", opts.Filter.LastName)
	addFilter("phone_number", opts.Filter.PhoneNumber)
	addFilter("address", opts.Filter.Address)

	var total int
	if err := c.db.conn.QueryRowContext(ctx, `SELECT COUNT(*)`+where, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting contacts: %w", err)
	}

	query := `SELECT id, user_id, first_name, last_name, phone_number, address, created_at, updated_at` +
		where + ` ORDER BY id`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		params = append(params, opts.Limit, opts.Offset)
	}

	rows, err := c.db.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]model.Contact, 0)
	for rows.Next() {
		var ct model.Contact
		if err := rows.Scan(
			&ct.ID, &ct.UserID, &ct.FirstName, &ct.LastName,
			&ct.PhoneNumber, &ct.Address, &ct.CreatedAt, &ct.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning contact row: %w", err)
		}
		contacts = append(contacts, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating contacts: %w", err)
	}

	return contacts, total, nil
}

// Update writes the full record back, keyed on (id, user_id). The service
// fetches and merges first, so this receives the already-merged contact.
//
// RowsAffected distinguishes "updated" from "not yours / doesn't exist".
// Renaming a contact onto an existing (first, last, phone) tuple trips the
// per-owner UNIQUE index and reports Conflict.
func (c *ContactDB) Update(ctx context.Context, contact *model.Contact) error {
	contact.UpdatedAt = time.Now()

	result, err := c.db.conn.ExecContext(ctx,
		`UPDATE contacts
		 SET first_name = ?, last_name = ?, phone_number = ?, address = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		contact.FirstName,
		contact.LastName,
		contact.PhoneNumber,
		contact.Address,
		contact.UpdatedAt,
		contact.ID,
		contact.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("contact already exists")
		}
		return fmt.Errorf("sqlite: updating contact %s: %w", contact.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("contact", contact.ID)
	}

	return nil
}

// Delete removes the owner's contact. A second delete of the same id finds no
// row and reports NotFound. The id is gone for good, never resurrected.
func (c *ContactDB) Delete(ctx context.Context, ownerID, id string) error {
	result, err := c.db.conn.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting contact %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("contact", id)
	}

	return nil
}
