package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joestump/bookmarks/internal/api"
)

func TestBookmarks_List_OK(t *testing.T) {
	env := newTestEnv(t)
	seedBookmark(t, env, "a", "Alpha", 3)
	seedBookmark(t, env, "b", "Beta", 5)

	rec := do(t, env.Router, "GET", "/bookmarks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp []api.BookmarkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(bookmarks) = %d, want 2", len(resp))
	}
}

func TestBookmarks_List_Empty(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "GET", "/bookmarks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestBookmarks_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	body := `{"title":"T","url":"http://x.com","rating":3}`
	req := httptest.NewRequest("POST", "/bookmarks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Unauthorized request"}` {
		t.Errorf("body = %s", got)
	}

	n, err := env.Store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("bookmarks stored = %d, want 0", n)
	}
}

func TestBookmarks_WrongToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/bookmarks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestBookmarks_Create_Created(t *testing.T) {
	env := newTestEnv(t)

	body := `{"title":"Thinkful","url":"https://www.thinkful.com","description":"Think outside the classroom","rating":5}`
	rec := do(t, env.Router, "POST", "/bookmarks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	created := decodeBookmark(t, rec)
	if created.ID == "" {
		t.Fatal("id not assigned")
	}
	if loc := rec.Header().Get("Location"); loc != "/bookmarks/"+created.ID {
		t.Errorf("Location = %q, want %q", loc, "/bookmarks/"+created.ID)
	}

	want := api.BookmarkResponse{
		ID:          created.ID,
		Title:       "Thinkful",
		URL:         "https://www.thinkful.com",
		Description: "Think outside the classroom",
		Rating:      5,
	}
	if created != want {
		t.Errorf("created = %+v, want %+v", created, want)
	}

	// Round trip through GET returns exactly the supplied fields.
	rec = do(t, env.Router, "GET", "/bookmarks/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := decodeBookmark(t, rec); got != want {
		t.Errorf("fetched = %+v, want %+v", got, want)
	}
}

func TestBookmarks_Create_UniqueIDs(t *testing.T) {
	env := newTestEnv(t)
	body := `{"title":"T","url":"http://x.com","rating":3}`

	a := decodeBookmark(t, do(t, env.Router, "POST", "/bookmarks", body))
	b := decodeBookmark(t, do(t, env.Router, "POST", "/bookmarks", body))
	if a.ID == b.ID {
		t.Errorf("ids collide: %q", a.ID)
	}
}

func TestBookmarks_Create_NumericStringRating(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "POST", "/bookmarks", `{"title":"T","url":"http://x.com","rating":"3"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got := decodeBookmark(t, rec); got.Rating != 3 {
		t.Errorf("rating = %d, want 3", got.Rating)
	}
}

func TestBookmarks_Create_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", `{}`, "title"},
		{"empty title", `{"title":"","url":"http://x.com","rating":3}`, "title"},
		{"missing url", `{"title":"T","rating":3}`, "url"},
		{"missing rating", `{"title":"T","url":"http://x.com"}`, "rating"},
		{"null rating", `{"title":"T","url":"http://x.com","rating":null}`, "rating"},
		{"only rating", `{"rating":3}`, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := do(t, env.Router, "POST", "/bookmarks", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			want := "Missing '" + tt.field + "' in request body"
			if got := errorMessage(t, rec); got != want {
				t.Errorf("message = %q, want %q", got, want)
			}
		})
	}
}

func TestBookmarks_Create_InvalidRating(t *testing.T) {
	tests := []struct {
		rating string
		shown  string
	}{
		{`0`, "0"},
		{`6`, "6"},
		{`"abc"`, "abc"},
		{`-2`, "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.shown, func(t *testing.T) {
			env := newTestEnv(t)
			body := `{"title":"T","url":"http://x.com","rating":` + tt.rating + `}`
			rec := do(t, env.Router, "POST", "/bookmarks", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			want := "invalid rating " + tt.shown + ". rating must be 1-5"
			if got := errorMessage(t, rec); got != want {
				t.Errorf("message = %q, want %q", got, want)
			}
		})
	}
}

func TestBookmarks_Create_InvalidURL(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "POST", "/bookmarks", `{"title":"T","url":"x.com","rating":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := errorMessage(t, rec); got != "invalid url x.com. must be a valid url." {
		t.Errorf("message = %q", got)
	}
}

func TestBookmarks_Create_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "POST", "/bookmarks", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := errorMessage(t, rec); got != "invalid request body" {
		t.Errorf("message = %q", got)
	}
}

func TestBookmarks_Create_ScriptTitleIsEscaped(t *testing.T) {
	env := newTestEnv(t)

	body := `{"title":"<script>alert(1)</script>","url":"http://x.com","description":"<strong>ok</strong><img src=\"x\" onerror=\"alert(1)\">","rating":3}`
	rec := do(t, env.Router, "POST", "/bookmarks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeBookmark(t, rec)

	rec = do(t, env.Router, "GET", "/bookmarks/"+created.ID, "")
	got := decodeBookmark(t, rec)
	if got.Title != "&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Description != `<strong>ok</strong><img src="x">` {
		t.Errorf("description = %q", got.Description)
	}

	// The store keeps the original text.
	raw, err := env.Store.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if raw.Title != "<script>alert(1)</script>" {
		t.Errorf("stored title = %q, want unescaped", raw.Title)
	}
}

func TestBookmarks_Get_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "GET", "/bookmarks/nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := errorMessage(t, rec); got != "Bookmark doesn't exist" {
		t.Errorf("message = %q", got)
	}
}

func TestBookmarks_Delete(t *testing.T) {
	env := newTestEnv(t)
	seedBookmark(t, env, "del-me", "Delete me", 2)

	rec := do(t, env.Router, "DELETE", "/bookmarks/del-me", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}

	rec = do(t, env.Router, "GET", "/bookmarks/del-me", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBookmarks_Delete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "DELETE", "/bookmarks/nonexistent", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if got := errorMessage(t, rec); got != "Bookmark doesn't exist" {
		t.Errorf("message = %q", got)
	}
}

func TestBookmarks_Update_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	seedBookmark(t, env, "p", "Patch me", 2)

	for _, body := range []string{`{}`, `{"title":"","url":null,"rating":null}`, `{"unknown":"x"}`} {
		rec := do(t, env.Router, "PATCH", "/bookmarks/p", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
		want := "Request body content must be one of 'title','url','description', or 'rating'"
		if got := errorMessage(t, rec); got != want {
			t.Errorf("body %s: message = %q", body, got)
		}
	}
}

func TestBookmarks_Update_OnlyRating(t *testing.T) {
	env := newTestEnv(t)
	orig := seedBookmark(t, env, "p", "Patch me", 2)

	rec := do(t, env.Router, "PATCH", "/bookmarks/p", `{"rating":3}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	got, err := env.Store.GetByID(context.Background(), "p")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Rating != 3 {
		t.Errorf("rating = %d, want 3", got.Rating)
	}
	if got.Title != orig.Title || got.URL != orig.URL || got.Description != orig.Description {
		t.Errorf("other fields changed: got %+v, was %+v", got, orig)
	}
}

func TestBookmarks_Update_Fields(t *testing.T) {
	env := newTestEnv(t)
	seedBookmark(t, env, "p", "Patch me", 2)

	rec := do(t, env.Router, "PATCH", "/bookmarks/p", `{"title":"New","url":"https://new.example","description":""}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	got := decodeBookmark(t, do(t, env.Router, "GET", "/bookmarks/p", ""))
	want := api.BookmarkResponse{ID: "p", Title: "New", URL: "https://new.example", Description: "", Rating: 2}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestBookmarks_Update_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"rating too high", `{"rating":6}`, "invalid rating 6. rating must be 1-5"},
		{"rating not numeric", `{"title":"ok","rating":"abc"}`, "invalid rating abc. rating must be 1-5"},
		{"bad url", `{"url":"notaurl"}`, "invalid url notaurl. must be a valid url."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedBookmark(t, env, "p", "Patch me", 2)

			rec := do(t, env.Router, "PATCH", "/bookmarks/p", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if got := errorMessage(t, rec); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}

			b, _ := env.Store.GetByID(context.Background(), "p")
			if b.Title != "Patch me" || b.Rating != 2 {
				t.Errorf("bookmark changed after rejected patch: %+v", b)
			}
		})
	}
}

func TestBookmarks_Update_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env.Router, "PATCH", "/bookmarks/nonexistent", `{"rating":3}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestBookmarks_VanishedAfterLookup(t *testing.T) {
	env := newTestEnv(t, func(d *api.Deps) { d.BookmarkStore = vanishingStore{} })

	for _, tc := range []struct{ method, body string }{
		{"PATCH", `{"rating":3}`},
		{"DELETE", ""},
	} {
		rec := do(t, env.Router, tc.method, "/bookmarks/x", tc.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want %d", tc.method, rec.Code, http.StatusNotFound)
		}
	}
}

func TestBookmarks_Prefix(t *testing.T) {
	env := newTestEnv(t, func(d *api.Deps) { d.Prefix = "/api" })

	rec := do(t, env.Router, "POST", "/api/bookmarks", `{"title":"T","url":"http://x.com","rating":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	created := decodeBookmark(t, rec)
	if loc := rec.Header().Get("Location"); loc != "/api/bookmarks/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	rec = do(t, env.Router, "GET", "/bookmarks", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unprefixed status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
