package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleViewer  Role = "VIEWER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleViewer:  1,
	RoleManager: 2,
	RoleAdmin:   3,
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r sits at or above min in the
// ADMIN > MANAGER > VIEWER hierarchy. Unknown roles rank below everything.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

// User is the identity record. PasswordHash is empty for accounts created
// through an OAuth provider.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ExternalProfile is what an OAuth provider asserts about a user.
type ExternalProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoCredentials      = errors.New("no credentials presented")
)
