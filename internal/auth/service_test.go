package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeUserStore struct {
	byEmail map[string]*User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*User{}}
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			copy := *u
			return &copy, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, u *User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	copy := *u
	f.byEmail[u.Email] = &copy
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, email, hash string) error {
	u, ok := f.byEmail[email]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range f.byEmail {
		out = append(out, *u)
	}
	return out, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	return NewService(store, NewTokenIssuer("test-secret")), store
}

func TestRegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	u, err := svc.Register(ctx, "alice@example.com", "pw123", "Alice", "Lee")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != RoleViewer {
		t.Errorf("default role = %q, want VIEWER", u.Role)
	}
	if !u.IsActive {
		t.Error("registered user should be active")
	}
	if u.PasswordHash == "pw123" {
		t.Error("password must be stored hashed")
	}

	got, token, err := svc.Authenticate(ctx, "alice@example.com", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated id = %v, want %v", got.ID, u.ID)
	}

	claims, err := NewTokenIssuer("test-secret").Parse(token)
	if err != nil {
		t.Fatalf("Parse issued token: %v", err)
	}
	if claims.Email != "alice@example.com" || claims.Role != RoleViewer {
		t.Errorf("claims = {%q, %q}, want {alice@example.com, VIEWER}", claims.Email, claims.Role)
	}
}

func TestAuthenticateUniformRejection(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	if _, err := svc.Register(ctx, "bob@example.com", "correct", "Bob", "Ng"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// OAuth-only account: no local password.
	store.byEmail["ext@example.com"] = &User{
		ID: uuid.New(), Email: "ext@example.com", Role: RoleViewer, IsActive: true,
	}

	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "bob@example.com", "incorrect"},
		{"unknown user", "nobody@example.com", "whatever"},
		{"oauth-only account", "ext@example.com", "whatever"},
	}
	for _, tc := range cases {
		_, _, err := svc.Authenticate(ctx, tc.email, tc.password)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s: err = %v, want ErrInvalidCredentials", tc.name, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Register(ctx, "dup@example.com", "pw123", "First", "User"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, "dup@example.com", "other", "Second", "User")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate register: err = %v, want ErrEmailTaken", err)
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.Register(ctx, "carol@example.com", "oldpw", "Carol", "Wu"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.ResetPassword(ctx, "carol@example.com", "newpw"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, _, err := svc.Authenticate(ctx, "carol@example.com", "oldpw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password should no longer work")
	}
	if _, _, err := svc.Authenticate(ctx, "carol@example.com", "newpw"); err != nil {
		t.Errorf("new password should work: %v", err)
	}

	if err := svc.ResetPassword(ctx, "ghost@example.com", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user reset: err = %v, want ErrUserNotFound", err)
	}
}

func TestUpsertExternalIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	profile := ExternalProfile{
		Provider:   "github",
		ProviderID: "12345",
		Email:      "dana@example.com",
		Name:       "Dana van der Berg",
	}
	first, err := svc.UpsertExternal(ctx, profile)
	if err != nil {
		t.Fatalf("UpsertExternal: %v", err)
	}
	if first.FirstName != "Dana" || first.LastName != "van der Berg" {
		t.Errorf("name split = %q/%q, want Dana/van der Berg", first.FirstName, first.LastName)
	}
	if first.PasswordHash != "" {
		t.Error("external account should have no local password")
	}
	if first.Role != RoleViewer {
		t.Errorf("external default role = %q, want VIEWER", first.Role)
	}

	second, err := svc.UpsertExternal(ctx, profile)
	if err != nil {
		t.Fatalf("UpsertExternal (repeat): %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat upsert created a new user: %v != %v", second.ID, first.ID)
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Alice Lee", "Alice", "Lee"},
		{"Cher", "Cher", ""},
		{"", "", ""},
		{"Dana van der Berg", "Dana", "van der Berg"},
	}
	for _, tc := range cases {
		first, last := splitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Errorf("splitName(%q) = %q/%q, want %q/%q", tc.in, first, last, tc.first, tc.last)
		}
	}
}
