package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Service owns the credential and identity flows: local login, registration,
// password reset, and the upsert behind OAuth callbacks. It never persists
// claims itself; the user record lives in the store.
type Service struct {
	store  UserStore
	tokens *TokenIssuer
}

func NewService(store UserStore, tokens *TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// Authenticate verifies email/password and issues a bearer token. Unknown
// email, missing local password, and wrong password all collapse into
// ErrInvalidCredentials so the caller cannot probe which accounts exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if user.PasswordHash == "" || !VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Register creates a local-credential account with the default role.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         RoleViewer,
		IsActive:     true,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	if _, err := s.store.GetByEmail(ctx, email); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, email, hash)
}

// UpsertExternal resumes or creates the account behind an OAuth profile,
// keyed by email. Repeated callbacks with the same profile are idempotent.
// New accounts have no local password.
func (s *Service) UpsertExternal(ctx context.Context, profile ExternalProfile) (*User, error) {
	if profile.Email == "" {
		return nil, errors.New("external profile has no email")
	}
	existing, err := s.store.GetByEmail(ctx, profile.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	first, last := splitName(profile.Name)
	u := &User{
		Email:     profile.Email,
		FirstName: first,
		LastName:  last,
		Role:      RoleViewer,
		IsActive:  true,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			// Lost a race with a concurrent callback; the record exists now.
			return s.store.GetByEmail(ctx, profile.Email)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// splitName turns a provider display name into first/last heuristically:
// first token is the first name, the rest joins into the last name.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
