// Package service contains the business logic layer: validation, uniqueness
// and ownership rules, orchestration of repositories and auth utilities.
//
// Handlers (HTTP) call services with plain values; services call repositories
// through interfaces. Neither direction knows about the other's concerns;
// services return domain errors, never status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nadavr/contactbook/internal/apperror"
	"github.com/nadavr/contactbook/internal/auth"
	"github.com/nadavr/contactbook/internal/model"
	"github.com/nadavr/contactbook/internal/repository"
)

// MinPasswordLength is the minimum accepted signup password length.
const MinPasswordLength = 6

// UserService handles signup and login.
type UserService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the issued token with the authenticated user so the
// handler can build the response in one step.
type LoginResult struct {
	Token string
	User  *model.User
}

// Register validates a signup request, hashes the password, and persists the
// new user. The plaintext password never reaches the repository.
//
// Username/email uniqueness is NOT checked here with a lookup; the store's
// unique constraints decide atomically, so concurrent identical signups
// produce exactly one account. The repository's Conflict error passes
// through untouched.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("user_name", "username is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email must be a valid address")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	user := &model.User{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a session token.
//
// A single Unauthorized signal covers both "unknown email" and "wrong
// password", so the response does not reveal which part was wrong. Failure has
// no side effects.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed", slog.String("email", email))
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := s.passwords.Verify(user.HashedPassword, password); err != nil {
		s.logger.Warn("login failed", slog.String("email", email))
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/user: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("login successful", slog.String("userID", user.ID))

	return &LoginResult{Token: token, User: user}, nil
}
