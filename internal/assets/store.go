package assets

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
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

func (s *Store) Insert(ctx context.Context, a *Asset) error {
	now := time.Now().UTC()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusAvailable
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	const q = `
		INSERT INTO assets (id, name, description, status, value, category_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, q, a.ID, a.Name, a.Description, a.Status,
		a.Value, a.CategoryID, a.CreatedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCategoryMissing
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	const q = `
		SELECT id, name, description, status, value, category_id, COALESCE(created_by, '00000000-0000-0000-0000-000000000000'), created_at, updated_at
		FROM assets WHERE id = $1
	`
	a := &Asset{}
	err := s.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.Description,
		&a.Status, &a.Value, &a.CategoryID, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Store) List(ctx context.Context, f Filter) ([]Asset, error) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		clauses = append(clauses, "status = $"+strconv.Itoa(argIdx))
		args = append(args, string(f.Status))
		argIdx++
	}
	if f.CategoryID != uuid.Nil {
		clauses = append(clauses, "category_id = $"+strconv.Itoa(argIdx))
		args = append(args, f.CategoryID)
		argIdx++
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	query := `SELECT id, name, description, status, value, category_id, COALESCE(created_by, '00000000-0000-0000-0000-000000000000'), created_at, updated_at FROM assets WHERE ` +
		strings.Join(clauses, " AND ") + " ORDER BY created_at DESC LIMIT " + strconv.Itoa(limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Asset
	for rows.Next() {
		var a Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Status, &a.Value,
			&a.CategoryID, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) Update(ctx context.Context, a *Asset) error {
	a.UpdatedAt = time.Now().UTC()
	const q = `
		UPDATE assets
		SET name = $1, description = $2, status = $3, value = $4, category_id = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := s.db.ExecContext(ctx, q, a.Name, a.Description, a.Status, a.Value,
		a.CategoryID, a.UpdatedAt, a.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrCategoryMissing
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAssetNotFound
	}
	return nil
}
