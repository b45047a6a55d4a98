package categories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, c *Category) error {
	now := time.Now().UTC()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	const q = `
		INSERT INTO categories (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.CreatedBy,
		c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	const q = `
		SELECT id, name, description, COALESCE(created_by, '00000000-0000-0000-0000-000000000000'), created_at, updated_at
		FROM categories WHERE id = $1
	`
	c := &Category{}
	err := s.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns all categories alphabetically with their asset counts.
func (s *Store) List(ctx context.Context) ([]Category, error) {
	const q = `
		SELECT c.id, c.name, c.description, COALESCE(c.created_by, '00000000-0000-0000-0000-000000000000'),
		       c.created_at, c.updated_at, COUNT(a.id)
		FROM categories c
		LEFT JOIN assets a ON a.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name ASC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedBy,
			&c.CreatedAt, &c.UpdatedAt, &c.AssetCount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) Update(ctx context.Context, c *Category) error {
	c.UpdatedAt = time.Now().UTC()
	const q = `UPDATE categories SET name = $1, description = $2, updated_at = $3 WHERE id = $4`
	res, err := s.db.ExecContext(ctx, q, c.Name, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes an empty category. Assets keep a foreign key to their
// category, so a referenced category surfaces as ErrCategoryInUse.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCategoryInUse
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
