package assets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"assetbase/internal/auth"
)

type fakeStore struct {
	byID            map[uuid.UUID]*Asset
	missingCategory bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[uuid.UUID]*Asset{}}
}

func (f *fakeStore) Insert(ctx context.Context, a *Asset) error {
	if f.missingCategory {
		return ErrCategoryMissing
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copy := *a
	f.byID[a.ID] = &copy
	return nil
}

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAssetNotFound
	}
	copy := *a
	return &copy, nil
}

func (f *fakeStore) List(ctx context.Context, flt Filter) ([]Asset, error) {
	var out []Asset
	for _, a := range f.byID {
		if flt.Status != "" && a.Status != flt.Status {
			continue
		}
		if flt.CategoryID != uuid.Nil && a.CategoryID != flt.CategoryID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) Update(ctx context.Context, a *Asset) error {
	if _, ok := f.byID[a.ID]; !ok {
		return ErrAssetNotFound
	}
	copy := *a
	f.byID[a.ID] = &copy
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return ErrAssetNotFound
	}
	delete(f.byID, id)
	return nil
}

func newTestRouter(store *fakeStore) http.Handler {
	h := &Handler{Store: store, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r := chi.NewRouter()
	r.Get("/assets", h.ListHandler)
	r.Post("/assets", h.CreateHandler)
	r.Get("/assets/{id}", h.GetHandler)
	r.Put("/assets/{id}", h.UpdateHandler)
	r.Delete("/assets/{id}", h.DeleteHandler)
	return r
}

func withClaims(req *http.Request, userID uuid.UUID) *http.Request {
	claims := &auth.Claims{UserID: userID, Email: "m@example.com", Role: auth.RoleManager}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestCreateAsset(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	userID := uuid.New()
	catID := uuid.New()

	body := `{"name":"Laptop","categoryId":"` + catID.String() + `","value":1200.50,"description":"dev machine"}`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(body)), userID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got Asset
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != StatusAvailable {
		t.Errorf("default status = %q, want available", got.Status)
	}
	if got.CreatedBy != userID {
		t.Errorf("createdBy = %v, want the caller %v", got.CreatedBy, userID)
	}
	if got.Value != 1200.50 {
		t.Errorf("value = %v, want 1200.50", got.Value)
	}
}

func TestCreateAssetValidation(t *testing.T) {
	router := newTestRouter(newFakeStore())
	cases := []string{
		`{}`,
		`{"name":"x"}`,
		`{"name":"x","categoryId":"` + uuid.NewString() + `"}`,
		`{"name":"x","categoryId":"not-a-uuid","value":1}`,
		`{"name":"x","categoryId":"` + uuid.NewString() + `","value":1,"status":"bogus"}`,
		`not json`,
	}
	for _, body := range cases {
		req := withClaims(httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(body)), uuid.New())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestUpdateAssetPartial(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	a := &Asset{Name: "Desk", Status: StatusAvailable, Value: 300, CategoryID: uuid.New()}
	if err := store.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}

	body := `{"status":"maintenance"}`
	req := withClaims(httptest.NewRequest(http.MethodPut, "/assets/"+a.ID.String(), strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	updated, _ := store.Get(context.Background(), a.ID)
	if updated.Status != StatusMaintenance {
		t.Errorf("status = %q, want maintenance", updated.Status)
	}
	if updated.Name != "Desk" || updated.Value != 300 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestGetAssetNotFound(t *testing.T) {
	router := newTestRouter(newFakeStore())
	req := withClaims(httptest.NewRequest(http.MethodGet, "/assets/"+uuid.NewString(), nil), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteAsset(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	a := &Asset{Name: "Chair", Status: StatusAvailable, CategoryID: uuid.New()}
	_ = store.Insert(context.Background(), a)

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/assets/"+a.ID.String(), nil), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := store.Get(context.Background(), a.ID); err == nil {
		t.Error("asset should be gone")
	}
}

func TestListAssetsFilterValidation(t *testing.T) {
	router := newTestRouter(newFakeStore())
	for _, path := range []string{"/assets?status=bogus", "/assets?categoryId=nope"} {
		req := withClaims(httptest.NewRequest(http.MethodGet, path, nil), uuid.New())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestListAssetsEmpty(t *testing.T) {
	router := newTestRouter(newFakeStore())
	req := withClaims(httptest.NewRequest(http.MethodGet, "/assets", nil), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", rec.Body.String())
	}
}

func TestCreateAssetUnknownCategory(t *testing.T) {
	store := newFakeStore()
	store.missingCategory = true
	router := newTestRouter(store)

	body := `{"name":"Laptop","categoryId":"` + uuid.NewString() + `","value":10}`
	req := withClaims(httptest.NewRequest(http.MethodPost, "/assets", strings.NewReader(body)), uuid.New())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Category does not exist") {
		t.Errorf("body = %q, want the category error", rec.Body.String())
	}
}
