package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadavr/contactbook/internal/service"
)

// =========================================================================
// AUTHENTICATION GATE
// =========================================================================

func TestContactEndpoints_RequireAuth(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/contacts"},
		{http.MethodGet, "/contacts"},
		{http.MethodPatch, "/contacts/some-id"},
		{http.MethodDelete, "/contacts/some-id"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.target, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestContactEndpoints_RejectGarbageToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/contacts", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =========================================================================
// POST /contacts
// =========================================================================

func TestCreateContactEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	rec := api.do(t, http.MethodPost, "/contacts", token, map[string]string{
		"first_name":   "Bob",
		"last_name":    "Kane",
		"phone_number": "555-0101",
		"address":      "1 Bat Cave",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp createContactResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Contact created successfully", resp.Message)
	assert.NotEmpty(t, resp.ContactID)
}

func TestCreateContactEndpoint_MissingFields(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	rec := api.do(t, http.MethodPost, "/contacts", token, map[string]string{
		"first_name": "Bob",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateContactEndpoint_Duplicate(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	body := map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	}
	api.createContact(t, token, body)

	rec := api.do(t, http.MethodPost, "/contacts", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateContactEndpoint_SameContactOtherUser(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.registerAndLogin(t, "usera")
	tokenB := api.registerAndLogin(t, "userb")

	body := map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	}
	api.createContact(t, tokenA, body)

	rec := api.do(t, http.MethodPost, "/contacts", tokenB, body)
	assert.Equal(t, http.StatusCreated, rec.Code, "duplicate detection is per user")
}

// =========================================================================
// GET /contacts
// =========================================================================

func TestListContactsEndpoint_Empty(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	rec := api.do(t, http.MethodGet, "/contacts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.ListResult
	decodeBody(t, rec, &resp)
	assert.Equal(t, 0, resp.TotalCount)
	assert.NotNil(t, resp.Items)
	assert.Len(t, resp.Items, 0)
}

func TestListContactsEndpoint_Pagination(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	for i := 0; i < 12; i++ {
		api.createContact(t, token, map[string]string{
			"first_name":   fmt.Sprintf("First%02d", i),
			"last_name":    "Last",
			"phone_number": fmt.Sprintf("555-%02d", i),
		})
	}

	rec := api.do(t, http.MethodGet, "/contacts?page=2&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.ListResult
	decodeBody(t, rec, &resp)
	assert.Equal(t, 12, resp.TotalCount)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Items, 5)
}

func TestListContactsEndpoint_InvalidPage(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	rec := api.do(t, http.MethodGet, "/contacts?page=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListContactsEndpoint_IsolatedPerUser(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.registerAndLogin(t, "usera")
	tokenB := api.registerAndLogin(t, "userb")

	api.createContact(t, tokenA, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	})

	rec := api.do(t, http.MethodGet, "/contacts", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.ListResult
	decodeBody(t, rec, &resp)
	assert.Equal(t, 0, resp.TotalCount, "another user's contacts must not be visible")
}

func TestListContactsEndpoint_Filter(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	api.createContact(t, token, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "1",
	})
	api.createContact(t, token, map[string]string{
		"first_name": "Bobby", "last_name": "Drake", "phone_number": "2",
	})
	api.createContact(t, token, map[string]string{
		"first_name": "Ann", "last_name": "Kane", "phone_number": "3",
	})

	rec := api.do(t, http.MethodGet, "/contacts?first_name=bob", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp service.ListResult
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.TotalCount)
}

// =========================================================================
// PATCH /contacts/{id}
// =========================================================================

func TestUpdateContactEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	id := api.createContact(t, token, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101", "address": "1 Bat Cave",
	})

	rec := api.do(t, http.MethodPatch, "/contacts/"+id, token, map[string]string{
		"phone_number": "555-9999",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp messageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Contact updated successfully", resp.Message)

	// the untouched fields survive the partial update
	list := api.do(t, http.MethodGet, "/contacts", token, nil)
	var listResp service.ListResult
	decodeBody(t, list, &listResp)
	require.Len(t, listResp.Items, 1)
	assert.Equal(t, "555-9999", listResp.Items[0].PhoneNumber)
	assert.Equal(t, "Bob", listResp.Items[0].FirstName)
	assert.Equal(t, "1 Bat Cave", listResp.Items[0].Address)
}

func TestUpdateContactEndpoint_UnknownID(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	rec := api.do(t, http.MethodPatch, "/contacts/no-such-id", token, map[string]string{
		"phone_number": "555-9999",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateContactEndpoint_OtherUsersContact(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.registerAndLogin(t, "usera")
	tokenB := api.registerAndLogin(t, "userb")

	id := api.createContact(t, tokenA, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	})

	rec := api.do(t, http.MethodPatch, "/contacts/"+id, tokenB, map[string]string{
		"phone_number": "555-9999",
	})
	// indistinguishable from a contact that does not exist
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =========================================================================
// DELETE /contacts/{id}
// =========================================================================

func TestDeleteContactEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := api.registerAndLogin(t, "nadav")

	id := api.createContact(t, token, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	})

	rec := api.do(t, http.MethodDelete, "/contacts/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp messageResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Contact deleted successfully", resp.Message)

	// deleting again is a 404
	rec = api.do(t, http.MethodDelete, "/contacts/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteContactEndpoint_OtherUsersContact(t *testing.T) {
	api := newTestAPI(t)
	tokenA := api.registerAndLogin(t, "usera")
	tokenB := api.registerAndLogin(t, "userb")

	id := api.createContact(t, tokenA, map[string]string{
		"first_name": "Bob", "last_name": "Kane", "phone_number": "555-0101",
	})

	rec := api.do(t, http.MethodDelete, "/contacts/"+id, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// the owner still sees it
	list := api.do(t, http.MethodGet, "/contacts", tokenA, nil)
	var listResp service.ListResult
	decodeBody(t, list, &listResp)
	assert.Equal(t, 1, listResp.TotalCount)
}
