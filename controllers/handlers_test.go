package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YagooSRV/Azure-Partiel-2a3/migrate"
	"github.com/YagooSRV/Azure-Partiel-2a3/models"
	"github.com/YagooSRV/Azure-Partiel-2a3/services"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testOrigin = "https://app.example"

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupRouter(t *testing.T) (*gin.Engine, *services.GormItemStore) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "items.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := migrate.Run(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := services.NewItemStore(db)
	h := NewHandler(store, discardLogger())
	return NewRouter(h, []string{testOrigin}, discardLogger()), store
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestListEmptyReturnsArray(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(t, router, http.MethodGet, "/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("body = %s, want []", w.Body.String())
	}
}

func TestCreateThenGet(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(t, router, http.MethodPost, "/items", `{"name":"Alice"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[models.Item](t, w)
	if created.ID == 0 || created.Name != "Alice" {
		t.Fatalf("created = %+v", created)
	}
	if loc := w.Header().Get("Location"); loc != fmt.Sprintf("/items/%d", created.ID) {
		t.Errorf("Location = %q", loc)
	}

	w = do(t, router, http.MethodGet, fmt.Sprintf("/items/%d", created.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if got := decode[map[string]any](t, w); got["name"] != "Alice" || got["id"] != float64(created.ID) || len(got) != 2 {
		t.Errorf("get body = %v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"name":""}`},
		{"blank name", `{"name":"   "}`},
		{"missing name", `{}`},
		{"no body", ``},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, store := setupRouter(t)

			w := do(t, router, http.MethodPost, "/items", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if decode[ErrorResponse](t, w).Error == "" {
				t.Error("missing error message")
			}

			items, err := store.List(context.Background())
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(items) != 0 {
				t.Errorf("rows persisted after rejected create: %+v", items)
			}
		})
	}
}

func TestGetInvalidAndMissing(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{"/items/abc", "/items/0", "/items/-1", "/items/99999999999"} {
		if w := do(t, router, http.MethodGet, path, ""); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, w.Code)
		}
	}

	w := do(t, router, http.MethodGet, "/items/7", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if msg := decode[ErrorResponse](t, w).Error; msg != "Item not found" {
		t.Errorf("error = %q", msg)
	}
}

func TestUpdate(t *testing.T) {
	router, store := setupRouter(t)
	item, err := store.Create(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	path := fmt.Sprintf("/items/%d", item.ID)

	w := do(t, router, http.MethodPut, path, `{"name":"Bob"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204 (body %s)", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("204 with body %q", w.Body.String())
	}

	got, err := store.Get(context.Background(), item.ID)
	if err != nil || got.Name != "Bob" {
		t.Errorf("after update: %+v, %v", got, err)
	}

	if w := do(t, router, http.MethodPut, path, `{"name":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty name status = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, "/items/x", `{"name":"Bob"}`); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

func TestUpdateMissingLeavesStoreUnchanged(t *testing.T) {
	router, store := setupRouter(t)
	item, err := store.Create(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	w := do(t, router, http.MethodPut, fmt.Sprintf("/items/%d", item.ID+1), `{"name":"Mallory"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0] != item {
		t.Errorf("store changed: %+v", items)
	}
}

func TestDeleteThenGet(t *testing.T) {
	router, store := setupRouter(t)
	item, err := store.Create(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	path := fmt.Sprintf("/items/%d", item.ID)

	if w := do(t, router, http.MethodDelete, path, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, path, ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestListAfterMutations(t *testing.T) {
	router, _ := setupRouter(t)

	ids := map[string]uint{}
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		w := do(t, router, http.MethodPost, "/items", fmt.Sprintf(`{"name":%q}`, name))
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s status = %d", name, w.Code)
		}
		ids[name] = decode[models.Item](t, w).ID
	}

	do(t, router, http.MethodPut, fmt.Sprintf("/items/%d", ids["Alice"]), `{"name":"Alicia"}`)
	do(t, router, http.MethodDelete, fmt.Sprintf("/items/%d", ids["Bob"]), "")

	w := do(t, router, http.MethodGet, "/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}

	got := map[uint]string{}
	for _, item := range decode[[]models.Item](t, w) {
		got[item.ID] = item.Name
	}
	want := map[uint]string{ids["Alice"]: "Alicia", ids["Carol"]: "Carol"}
	if len(got) != len(want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	for id, name := range want {
		if got[id] != name {
			t.Errorf("item %d = %q, want %q", id, got[id], name)
		}
	}
}

// failingStore reports the database as unreachable on every call.
type failingStore struct{}

var errDown = fmt.Errorf("%w: failed to list items: dial tcp: connection refused", services.ErrStoreUnavailable)

func (failingStore) List(context.Context) ([]models.Item, error)    { return nil, errDown }
func (failingStore) Get(context.Context, uint) (models.Item, error) { return models.Item{}, errDown }
func (failingStore) Create(context.Context, string) (models.Item, error) {
	return models.Item{}, errDown
}
func (failingStore) Update(context.Context, uint, string) error { return errDown }
func (failingStore) Delete(context.Context, uint) error         { return errDown }
func (failingStore) Ping(context.Context) error                 { return errDown }

func TestStoreUnavailable(t *testing.T) {
	router := NewRouter(NewHandler(failingStore{}, discardLogger()), []string{testOrigin}, discardLogger())

	requests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/items", ""},
		{http.MethodGet, "/items/1", ""},
		{http.MethodPost, "/items", `{"name":"Alice"}`},
		{http.MethodPut, "/items/1", `{"name":"Alice"}`},
		{http.MethodDelete, "/items/1", ""},
	}

	for _, r := range requests {
		w := do(t, router, r.method, r.path, r.body)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s %s status = %d, want 500", r.method, r.path, w.Code)
			continue
		}
		if msg := decode[ErrorResponse](t, w).Error; msg != errDown.Error() {
			t.Errorf("%s %s error = %q, want verbatim store error", r.method, r.path, msg)
		}
	}
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := decode[HealthResponse](t, w); got.Status != "ok" {
		t.Errorf("status = %q", got.Status)
	}

	down := NewRouter(NewHandler(failingStore{}, discardLogger()), []string{testOrigin}, discardLogger())
	w = do(t, down, http.MethodGet, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if got := decode[HealthResponse](t, w); got.Status != "unavailable" || got.Error == "" {
		t.Errorf("body = %+v", got)
	}
}

func TestSwaggerDoc(t *testing.T) {
	router, _ := setupRouter(t)

	w := do(t, router, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	doc := decode[map[string]any](t, w)
	paths, _ := doc["paths"].(map[string]any)
	for _, p := range []string{"/items", "/items/{id}"} {
		if _, ok := paths[p]; !ok {
			t.Errorf("swagger doc missing path %s", p)
		}
	}
}

func TestCORS(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/items/1", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code >= 300 {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete) {
		t.Errorf("Access-Control-Allow-Methods = %q", w.Header().Get("Access-Control-Allow-Methods"))
	}

	req = httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", w.Code)
	}
}

func TestParseID(t *testing.T) {
	h := &Handler{}
	cases := map[string]bool{
		"1":          true,
		"4294967295": true,
		"4294967296": false,
		"0":          false,
		"-3":         false,
		"1.5":        false,
		"":           false,
	}
	for in, ok := range cases {
		_, err := h.parseID(in)
		if (err == nil) != ok {
			t.Errorf("parseID(%q) error = %v, want ok=%v", in, err, ok)
		}
	}
}
