package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadavr/contactbook/internal/apperror"
	"github.com/nadavr/contactbook/internal/cache"
	"github.com/nadavr/contactbook/internal/model"
	"github.com/nadavr/contactbook/internal/pagination"
	"github.com/nadavr/contactbook/internal/repository"
)

// ContactService handles business logic for contacts. Every method takes the
// ownerID resolved by the auth middleware as its first domain argument; the
// service never derives identity from anything else.
//
// listings is optional; nil disables the redis cache and every List hits the
// repository directly.
type ContactService struct {
	contacts repository.ContactRepository
	listings *cache.ListingCache
	logger   *slog.Logger
}

// NewContactService creates a ContactService. Pass a nil listings cache to
// run without redis.
func NewContactService(
	contacts repository.ContactRepository,
	listings *cache.ListingCache,
	logger *slog.Logger,
) *ContactService {
	return &ContactService{
		contacts: contacts,
		listings: listings,
		logger:   logger,
	}
}

// ContactFields is the payload for creating a contact.
type ContactFields struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
}

// ContactUpdate is a partial update: nil means "leave this field untouched",
// a non-nil pointer (even to an empty string, for Address) means "set it".
type ContactUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	Address     *string
}

// ContactView is the API-facing projection of a contact, also the unit stored
// in the listing cache.
type ContactView struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address,omitempty"`
}

// ListResult is one page of an owner's contacts. Its JSON shape is the wire
// contract of GET /contacts.
type ListResult struct {
	Items      []ContactView `json:"items"`
	TotalCount int           `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// ListQuery carries the listing parameters parsed by the handler.
type ListQuery struct {
	Page   int
	Limit  int
	Filter repository.ContactFilter
}

// Create validates and saves a new contact for ownerID.
//
// A duplicate of the owner's own (first name, last name, phone) tuple is a
// Conflict; the same tuple under another owner is not. The repository's
// per-owner unique index enforces both sides atomically.
func (s *ContactService) Create(ctx context.Context, ownerID string, fields ContactFields) (*model.Contact, error) {
	fields.FirstName = strings.TrimSpace(fields.FirstName)
	fields.LastName = strings.TrimSpace(fields.LastName)
	fields.PhoneNumber = strings.TrimSpace(fields.PhoneNumber)

	if fields.FirstName == "" {
		return nil, apperror.ValidationFailed("first_name", "first name is required")
	}
	if fields.LastName == "" {
		return nil, apperror.ValidationFailed("last_name", "last name is required")
	}
	if fields.PhoneNumber == "" {
		return nil, apperror.ValidationFailed("phone_number", "phone number is required")
	}

	contact := &model.Contact{
		UserID:      ownerID,
		FirstName:   fields.FirstName,
		LastName:    fields.LastName,
		PhoneNumber: fields.PhoneNumber,
		Address:     strings.TrimSpace(fields.Address),
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.logger.Info("contact created",
		slog.String("contactID", contact.ID),
		slog.String("userID", ownerID),
	)

	s.invalidateListings(ctx, ownerID)
	return contact, nil
}

// Get returns one of the owner's contacts. A foreign or unknown id is
// NotFound either way.
func (s *ContactService) Get(ctx context.Context, ownerID, contactID string) (*model.Contact, error) {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return nil, apperror.ValidationFailed("id", "contact ID is required")
	}
	return s.contacts.GetByID(ctx, ownerID, contactID)
}

// Update merges the supplied fields into the owner's contact.
//
// Fetch-then-update: the scoped fetch both performs the ownership check (a
// foreign id fails here, before any write) and gives us the full record to
// merge into, so omitted fields survive untouched. An update supplying no
// fields at all is a no-op success.
func (s *ContactService) Update(ctx context.Context, ownerID, contactID string, upd ContactUpdate) error {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return apperror.ValidationFailed("id", "contact ID is required")
	}

	contact, err := s.contacts.GetByID(ctx, ownerID, contactID)
	if err != nil {
		return err
	}

	changed := false
	if upd.FirstName != nil {
		v := strings.TrimSpace(*upd.FirstName)
		if v == "" {
			return apperror.ValidationFailed("first_name", "first name must not be empty")
		}
		contact.FirstName = v
		changed = true
	}
	if upd.LastName != nil {
		contact.LastName = strings.TrimSpace(*upd.LastName)
		changed = true
	}
	if upd.PhoneNumber != nil {
		contact.PhoneNumber = strings.TrimSpace(*upd.PhoneNumber)
		changed = true
	}
	if upd.Address != nil {
		contact.Address = strings.TrimSpace(*upd.Address)
		changed = true
	}

	if !changed {
		return nil
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return err
	}

	s.logger.Info("contact updated",
		slog.String("contactID", contactID),
		slog.String("userID", ownerID),
	)

	s.invalidateListings(ctx, ownerID)
	return nil
}

// Delete removes the owner's contact. The id is gone for good afterwards: a
// repeat delete (or any later operation on it) reports NotFound.
func (s *ContactService) Delete(ctx context.Context, ownerID, contactID string) error {
	contactID = strings.TrimSpace(contactID)
	if contactID == "" {
		return apperror.ValidationFailed("id", "contact ID is required")
	}

	if err := s.contacts.Delete(ctx, ownerID, contactID); err != nil {
		return err
	}

	s.logger.Info("contact deleted",
		slog.String("contactID", contactID),
		slog.String("userID", ownerID),
	)

	s.invalidateListings(ctx, ownerID)
	return nil
}

// List returns one page of the owner's contacts, consulting the redis cache
// first when it is configured. An owner with no contacts gets an empty page,
// not an error.
func (s *ContactService) List(ctx context.Context, ownerID string, q ListQuery) (*ListResult, error) {
	params := pagination.Normalize(q.Page, q.Limit)
	key := s.cacheKey(params, q.Filter)

	if s.listings != nil {
		var cached ListResult
		found, err := s.listings.Get(ctx, ownerID, key, &cached)
		if err != nil {
			s.logger.Warn("listing cache read failed", slog.String("error", err.Error()))
		} else if found {
			return &cached, nil
		}
	}

	items, total, err := s.contacts.List(ctx, ownerID, repository.ListOptions{
		Limit:  params.Limit,
		Offset: params.Offset(),
		Filter: q.Filter,
	})
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}

	// An unlimited request spans exactly one page, so any later page is past
	// the end and comes back empty, like a paginated page past the end.
	if params.Unlimited() && params.Page > 1 {
		items = items[:0]
	}

	views := make([]ContactView, len(items))
	for i, c := range items {
		views[i] = ContactView{
			ID:          c.ID,
			UserID:      c.UserID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Address:     c.Address,
		}
	}

	result := &ListResult{
		Items:      views,
		TotalCount: total,
		Page:       params.Page,
		PageSize:   params.PageSize(total),
		TotalPages: params.TotalPages(total),
	}

	if s.listings != nil {
		if err := s.listings.Set(ctx, ownerID, key, result); err != nil {
			s.logger.Warn("listing cache write failed", slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func (s *ContactService) cacheKey(params pagination.Params, filter repository.ContactFilter) cache.Key {
	return cache.Key{
		Filters: map[string]string{
			"first_name":   filter.FirstName,
			"last_name":    filter.LastName,
			"phone_number": filter.PhoneNumber,
			"address":      filter.Address,
		},
		Page:  params.Page,
		Limit: params.Limit,
	}
}

// invalidateListings drops the owner's cached pages after a mutation.
// Best effort: a failure only means a stale page may live until its TTL.
func (s *ContactService) invalidateListings(ctx context.Context, ownerID string) {
	if s.listings == nil {
		return
	}
	if err := s.listings.InvalidateUser(ctx, ownerID); err != nil {
		s.logger.Warn("listing cache invalidation failed",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
	}
}
