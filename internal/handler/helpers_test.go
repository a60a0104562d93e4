package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nadavr/contactbook/internal/auth"
	"github.com/nadavr/contactbook/internal/repository/sqlite"
	"github.com/nadavr/contactbook/internal/service"
)

// testAPI is a fully wired router over an in-memory database, exercising the
// same stack as production minus redis.
type testAPI struct {
	router chi.Router
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("creating token service: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)

	userSvc := service.NewUserService(db.Users(), tokens, passwords, logger)
	contactSvc := service.NewContactService(db.Contacts(), nil, logger)

	users := NewUserHandler(userSvc, logger)
	contacts := NewContactHandler(contactSvc, logger)

	r := chi.NewRouter()
	r.Post("/users", users.Register)
	r.Post("/login", users.Login)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/contacts", contacts.Create)
		r.Get("/contacts", contacts.List)
		r.Patch("/contacts/{id}", contacts.Update)
		r.Delete("/contacts/{id}", contacts.Delete)
	})

	return &testAPI{router: r, tokens: tokens}
}

// do sends a JSON request and returns the recorded response.
func (api *testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
}

// registerAndLogin creates a user with unique credentials and returns its
// bearer token.
func (api *testAPI) registerAndLogin(t *testing.T, tag string) string {
	t.Helper()

	email := fmt.Sprintf("%s@example.com", tag)
	rec := api.do(t, http.MethodPost, "/users", "", map[string]string{
		"user_name": tag,
		"email":    email,
		"password": "hunter22",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registering %s: status %d, body %s", tag, rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("logging in %s: status %d, body %s", tag, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.Token
}

// createContact creates a contact via the API and returns its ID.
func (api *testAPI) createContact(t *testing.T, token string, body map[string]string) string {
	t.Helper()

	rec := api.do(t, http.MethodPost, "/contacts", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating contact: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ContactID string `json:"contact_id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ContactID
}
