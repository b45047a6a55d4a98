package categories

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"assetbase/internal/auth"
	"assetbase/internal/httpx"
)

type categoryStore interface {
	Insert(ctx context.Context, c *Category) error
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	Store  categoryStore
	Logger *slog.Logger
}

// ListHandler handles GET /api/v1/categories.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		h.Logger.Error("list categories", "err", err)
		httpx.Internal(w)
		return
	}
	if list == nil {
		list = []Category{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateHandler handles POST /api/v1/categories. Name is required.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == nil || *body.Name == "" {
		httpx.Error(w, http.StatusBadRequest, "Category name is required")
		return
	}
	c := &Category{Name: *body.Name}
	if body.Description != nil {
		c.Description = *body.Description
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		c.CreatedBy = claims.UserID
	}
	if err := h.Store.Insert(r.Context(), c); err != nil {
		h.Logger.Error("create category", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// UpdateHandler handles PUT /api/v1/categories/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	var body categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	c, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			httpx.Error(w, http.StatusNotFound, "Category not found")
			return
		}
		h.Logger.Error("load category", "err", err)
		httpx.Internal(w)
		return
	}
	if body.Name != nil {
		if *body.Name == "" {
			httpx.Error(w, http.StatusBadRequest, "Category name is required")
			return
		}
		c.Name = *body.Name
	}
	if body.Description != nil {
		c.Description = *body.Description
	}
	if err := h.Store.Update(r.Context(), c); err != nil {
		h.Logger.Error("update category", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// DeleteHandler handles DELETE /api/v1/categories/{id}. A category that
// still has assets is a 400.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			httpx.Error(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, ErrCategoryInUse):
			httpx.Error(w, http.StatusBadRequest, "Category still has assets")
		default:
			h.Logger.Error("delete category", "err", err)
			httpx.Internal(w)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}
