package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joestump/bookmarks/internal/api"
	"github.com/joestump/bookmarks/internal/auth"
	"github.com/joestump/bookmarks/internal/db"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/store"
	"github.com/joestump/bookmarks/internal/testutil"
)

const testToken = "test-token"

// testEnv holds the router and the store behind it.
type testEnv struct {
	Router http.Handler
	Store  *store.BookmarkStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full router with a real store.
func newTestEnv(t *testing.T, opts ...func(*api.Deps)) *testEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)
	bs := store.NewBookmarkStore(conn)

	deps := api.Deps{
		BearerAuth:    auth.NewBearerTokenMiddleware(testToken, logger.NewNop()),
		BookmarkStore: bs,
		Logger:        logger.NewNop(),
		DB:            conn,
		SchemaVersion: func() (int64, error) { return db.Version(conn) },
		ClientOrigin:  "http://localhost:3000",
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testEnv{Router: api.NewRouter(deps), Store: bs}
}

// seedBookmark stores a bookmark directly, bypassing the API.
func seedBookmark(t *testing.T, env *testEnv, id, title string, rating int) *store.Bookmark {
	t.Helper()
	b, err := env.Store.Insert(context.Background(), &store.Bookmark{
		ID:          id,
		Title:       title,
		URL:         "https://example.com/" + id,
		Description: "about " + title,
		Rating:      rating,
	})
	if err != nil {
		t.Fatalf("seed bookmark: %v", err)
	}
	return b
}

// do sends an authenticated request with an optional JSON body.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// errorMessage decodes a {"error":{"message":...}} body.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v; body: %s", err, rec.Body.String())
	}
	return resp.Error.Message
}

func decodeBookmark(t *testing.T, rec *httptest.ResponseRecorder) api.BookmarkResponse {
	t.Helper()
	var resp api.BookmarkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
	return resp
}

var errBoom = errors.New("boom: connection refused")

// failingStore fails every operation with errBoom.
type failingStore struct{}

func (failingStore) ListAll(context.Context) ([]*store.Bookmark, error) { return nil, errBoom }
func (failingStore) GetByID(context.Context, string) (*store.Bookmark, error) {
	return nil, errBoom
}
func (failingStore) Insert(context.Context, *store.Bookmark) (*store.Bookmark, error) {
	return nil, errBoom
}
func (failingStore) Update(context.Context, string, store.BookmarkPatch) (int64, error) {
	return 0, errBoom
}
func (failingStore) Delete(context.Context, string) (int64, error) { return 0, errBoom }
func (failingStore) Count(context.Context) (int, error)           { return 0, errBoom }

// panickingStore panics on ListAll.
type panickingStore struct{ failingStore }

func (panickingStore) ListAll(context.Context) ([]*store.Bookmark, error) { panic("kaboom") }

// vanishingStore reports every bookmark as present but affects no rows,
// as if another request deleted it after the lookup.
type vanishingStore struct{ failingStore }

func (vanishingStore) GetByID(_ context.Context, id string) (*store.Bookmark, error) {
	return &store.Bookmark{ID: id, Title: "gone", URL: "https://example.com", Rating: 1}, nil
}
func (vanishingStore) Update(context.Context, string, store.BookmarkPatch) (int64, error) {
	return 0, nil
}
func (vanishingStore) Delete(context.Context, string) (int64, error) { return 0, nil }
