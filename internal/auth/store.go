package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

// UserStore is the identity-store surface the rest of the package needs.
// Store is the Postgres implementation.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	List(ctx context.Context) ([]User, error)
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, email, COALESCE(password_hash, ''), first_name, last_name, role, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

// Create inserts the user record. An empty PasswordHash is stored as NULL,
// which is how OAuth-only accounts look. A unique-violation on email surfaces
// as ErrEmailTaken.
func (s *Store) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	var hash interface{}
	if u.PasswordHash != "" {
		hash = u.PasswordHash
	}
	const q = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.Email, hash, u.FirstName, u.LastName,
		u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE email = $3`
	res, err := s.db.ExecContext(ctx, q, passwordHash, time.Now().UTC(), email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

type usersFile struct {
	Users []struct {
		Email     string `yaml:"email"`
		Password  string `yaml:"password"`
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		Role      Role   `yaml:"role"`
	} `yaml:"users"`
}

// SeedFromFile bootstraps users from a YAML file. Existing emails are left
// alone, so reseeding on every start is safe.
func (s *Store) SeedFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return err
	}
	for _, entry := range uf.Users {
		if entry.Email == "" || entry.Password == "" {
			continue
		}
		if _, err := s.GetByEmail(ctx, entry.Email); err == nil {
			continue
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		hash, err := HashPassword(entry.Password)
		if err != nil {
			return err
		}
		role := entry.Role
		if !role.Valid() {
			role = RoleViewer
		}
		u := &User{
			Email:        entry.Email,
			PasswordHash: hash,
			FirstName:    entry.FirstName,
			LastName:     entry.LastName,
			Role:         role,
			IsActive:     true,
		}
		if err := s.Create(ctx, u); err != nil {
			return err
		}
	}
	return nil
}
