package assets

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"assetbase/internal/auth"
	"assetbase/internal/httpx"
)

// assetStore is the store surface the handlers need; the Postgres Store
// satisfies it, tests use a fake.
type assetStore interface {
	Insert(ctx context.Context, a *Asset) error
	Get(ctx context.Context, id uuid.UUID) (*Asset, error)
	List(ctx context.Context, f Filter) ([]Asset, error)
	Update(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	Store  assetStore
	Logger *slog.Logger
}

// ListHandler handles GET /api/v1/assets with optional status, categoryId,
// and limit query parameters.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{}
	if st := q.Get("status"); st != "" {
		if !Status(st).Valid() {
			httpx.Error(w, http.StatusBadRequest, "Unknown status")
			return
		}
		filter.Status = Status(st)
	}
	if cat := q.Get("categoryId"); cat != "" {
		id, err := uuid.Parse(cat)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		filter.CategoryID = id
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = l
		}
	}
	list, err := h.Store.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("list assets", "err", err)
		httpx.Internal(w)
		return
	}
	if list == nil {
		list = []Asset{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

// GetHandler handles GET /api/v1/assets/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid asset id")
		return
	}
	a, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			httpx.Error(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.Logger.Error("get asset", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

type assetRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Value       *float64 `json:"value"`
	CategoryID  *string  `json:"categoryId"`
}

// CreateHandler handles POST /api/v1/assets. Name, categoryId, and value are
// required.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var body assetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Name == nil || *body.Name == "" || body.CategoryID == nil || body.Value == nil {
		httpx.Error(w, http.StatusBadRequest, "Missing required fields: name, categoryId, and value are required")
		return
	}
	categoryID, err := uuid.Parse(*body.CategoryID)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	a := &Asset{
		Name:       *body.Name,
		CategoryID: categoryID,
		Value:      *body.Value,
		Status:     StatusAvailable,
	}
	if body.Description != nil {
		a.Description = *body.Description
	}
	if body.Status != nil {
		if !Status(*body.Status).Valid() {
			httpx.Error(w, http.StatusBadRequest, "Unknown status")
			return
		}
		a.Status = Status(*body.Status)
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		a.CreatedBy = claims.UserID
	}
	if err := h.Store.Insert(r.Context(), a); err != nil {
		if errors.Is(err, ErrCategoryMissing) {
			httpx.Error(w, http.StatusBadRequest, "Category does not exist")
			return
		}
		h.Logger.Error("create asset", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// UpdateHandler handles PUT /api/v1/assets/{id}. Absent fields keep their
// current values.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid asset id")
		return
	}
	var body assetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			httpx.Error(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.Logger.Error("load asset", "err", err)
		httpx.Internal(w)
		return
	}
	if body.Name != nil {
		a.Name = *body.Name
	}
	if body.Description != nil {
		a.Description = *body.Description
	}
	if body.Status != nil {
		if !Status(*body.Status).Valid() {
			httpx.Error(w, http.StatusBadRequest, "Unknown status")
			return
		}
		a.Status = Status(*body.Status)
	}
	if body.Value != nil {
		a.Value = *body.Value
	}
	if body.CategoryID != nil {
		categoryID, err := uuid.Parse(*body.CategoryID)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		a.CategoryID = categoryID
	}
	if err := h.Store.Update(r.Context(), a); err != nil {
		if errors.Is(err, ErrCategoryMissing) {
			httpx.Error(w, http.StatusBadRequest, "Category does not exist")
			return
		}
		h.Logger.Error("update asset", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, a)
}

// DeleteHandler handles DELETE /api/v1/assets/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid asset id")
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			httpx.Error(w, http.StatusNotFound, "Asset not found")
			return
		}
		h.Logger.Error("delete asset", "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Asset deleted"})
}
