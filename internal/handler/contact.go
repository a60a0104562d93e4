package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nadavr/contactbook/internal/apperror"
	"github.com/nadavr/contactbook/internal/auth"
	"github.com/nadavr/contactbook/internal/repository"
	"github.com/nadavr/contactbook/internal/service"
)

// ContactHandler serves the per-user contact collection. Every method runs
// behind the auth middleware, so a missing user ID in the context is a bug in
// the route wiring, not a client error.
type ContactHandler struct {
	contacts *service.ContactService
	logger   *slog.Logger
}

func NewContactHandler(contacts *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

type createContactRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type createContactResponse struct {
	Message   string `json:"message"`
	ContactID string `json:"contact_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// updateContactRequest mirrors service.ContactUpdate: an absent key leaves
// the field untouched, an explicit value (including "") sets it.
type updateContactRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

// Create handles POST /contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req createContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	contact, err := h.contacts.Create(r.Context(), ownerID, service.ContactFields{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("contact created", "user_id", ownerID, "contact_id", contact.ID)
	writeJSON(w, http.StatusCreated, createContactResponse{
		Message:   "Contact created successfully",
		ContactID: contact.ID,
	})
}

// List handles GET /contacts. Pagination and field filters come from query
// parameters; with no limit the full collection is returned.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	result, err := h.contacts.List(r.Context(), ownerID, service.ListQuery{
		Page:  page,
		Limit: limit,
		Filter: repository.ContactFilter{
			FirstName:   q.Get("first_name"),
			LastName:    q.Get("last_name"),
			PhoneNumber: q.Get("phone_number"),
			Address:     q.Get("address"),
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Update handles PATCH /contacts/{id}.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	contactID := chi.URLParam(r, "id")

	var req updateContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	err := h.contacts.Update(r.Context(), ownerID, contactID, service.ContactUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("contact updated", "user_id", ownerID, "contact_id", contactID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact updated successfully"})
}

// Delete handles DELETE /contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	contactID := chi.URLParam(r, "id")

	if err := h.contacts.Delete(r.Context(), ownerID, contactID); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("contact deleted", "user_id", ownerID, "contact_id", contactID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Contact deleted successfully"})
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
