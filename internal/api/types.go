package api

import (
	"bytes"
	"encoding/json"

	"github.com/joestump/bookmarks/internal/store"
)

// BookmarkRequest is the request body for POST /bookmarks and PATCH /bookmarks/{id}.
// Pointer fields distinguish "absent" from "empty". Rating is kept raw so that
// both 3 and "3" are accepted.
type BookmarkRequest struct {
	Title       *string         `json:"title"`
	URL         *string         `json:"url"`
	Description *string         `json:"description"`
	Rating      json.RawMessage `json:"rating" swaggertype:"integer"`
}

// missingField returns the first required field absent from a create request,
// checked in the order title, url, rating.
func (r *BookmarkRequest) missingField() string {
	switch {
	case r.Title == nil || *r.Title == "":
		return "title"
	case r.URL == nil || *r.URL == "":
		return "url"
	case r.ratingText() == nil:
		return "rating"
	default:
		return ""
	}
}

// ratingText returns the rating as text, or nil when it is absent, null or "".
func (r *BookmarkRequest) ratingText() *string {
	raw := bytes.TrimSpace(r.Rating)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return &s
		}
		if s == "" {
			return nil
		}
	}
	return &s
}

// BookmarkResponse is the JSON representation of a single sanitized bookmark.
type BookmarkResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rating      int    `json:"rating"`
}

func toBookmarkResponse(b *store.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:          b.ID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		Rating:      b.Rating,
	}
}

// UnauthorizedResponse is the flat body written by the credential gate.
type UnauthorizedResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Schema  int64  `json:"schema_version"`
}
