package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joestump/bookmarks/internal/bookmarks"
	"github.com/joestump/bookmarks/internal/logger"
	"github.com/joestump/bookmarks/internal/metrics"
	"github.com/joestump/bookmarks/internal/store"
)

const (
	msgNotFound   = "Bookmark doesn't exist"
	msgEmptyPatch = "Request body content must be one of 'title','url','description', or 'rating'"
	msgBadBody    = "invalid request body"

	maxBodyBytes = 1 << 20
)

type bookmarkCtxKey struct{}

// bookmarksAPIHandler provides REST handlers for the bookmark resource.
type bookmarksAPIHandler struct {
	bookmarks store.BookmarkStoreIface
	faults    *faultResponder
	log       logger.Logger
	prefix    string
	newID     func() string
}

// registerBookmarkRoutes registers the collection and item routes on r.
// Every /{id} route first resolves existence through loadBookmark.
func registerBookmarkRoutes(r chi.Router, h *bookmarksAPIHandler) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.loadBookmark)
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
	})
}

// loadBookmark looks the bookmark up once and answers 404 when it is absent.
// It is the single existence check for GET, PATCH and DELETE on /{id}.
func (h *bookmarksAPIHandler) loadBookmark(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		b, err := h.bookmarks.GetByID(r.Context(), id)
		if err != nil {
			h.faults.serverError(w, r, "get", err)
			return
		}
		if b == nil {
			h.notFound(w, id)
			return
		}
		ctx := context.WithValue(r.Context(), bookmarkCtxKey{}, b)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bookmarkFromContext(ctx context.Context) *store.Bookmark {
	b, _ := ctx.Value(bookmarkCtxKey{}).(*store.Bookmark)
	return b
}

// List returns every bookmark.
// GET /bookmarks
//
// @Summary      List bookmarks
// @Tags         Bookmarks
// @Produce      json
// @Success      200  {array}   BookmarkResponse
// @Failure      401  {object}  UnauthorizedResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks [get]
func (h *bookmarksAPIHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.bookmarks.ListAll(r.Context())
	if err != nil {
		h.faults.serverError(w, r, "list", err)
		return
	}

	resp := make([]BookmarkResponse, 0, len(all))
	for _, b := range all {
		resp = append(resp, toBookmarkResponse(bookmarks.Sanitize(b)))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create validates and stores a new bookmark.
// POST /bookmarks
//
// @Summary      Create a bookmark
// @Description  title, url and rating (1-5) are required. The id is assigned by the server.
// @Tags         Bookmarks
// @Accept       json
// @Produce      json
// @Param        body  body      BookmarkRequest  true  "Bookmark to create"
// @Success      201   {object}  BookmarkResponse
// @Header       201   {string}  Location  "/bookmarks/{id}"
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  UnauthorizedResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks [post]
func (h *bookmarksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if field := req.missingField(); field != "" {
		h.reject(w, "missing_field", fmt.Sprintf("Missing '%s' in request body", field), logger.String("field", field))
		return
	}

	rating, err := bookmarks.Validate(bookmarks.Candidate{URL: req.URL, Rating: req.ratingText()})
	if err != nil {
		h.rejectInvalid(w, err)
		return
	}

	b := &store.Bookmark{
		ID:     h.newID(),
		Title:  *req.Title,
		URL:    *req.URL,
		Rating: *rating,
	}
	if req.Description != nil {
		b.Description = *req.Description
	}

	stored, err := h.bookmarks.Insert(r.Context(), b)
	if err != nil {
		h.faults.serverError(w, r, "insert", err)
		return
	}

	h.log.Info("bookmark created", logger.String("id", stored.ID))
	w.Header().Set("Location", h.prefix+"/bookmarks/"+stored.ID)
	writeJSON(w, http.StatusCreated, toBookmarkResponse(bookmarks.Sanitize(stored)))
}

// Get returns a single bookmark by id.
// GET /bookmarks/{id}
//
// @Summary      Get a bookmark
// @Tags         Bookmarks
// @Produce      json
// @Param        id   path      string  true  "Bookmark ID"
// @Success      200  {object}  BookmarkResponse
// @Failure      401  {object}  UnauthorizedResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [get]
func (h *bookmarksAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	b := bookmarkFromContext(r.Context())
	writeJSON(w, http.StatusOK, toBookmarkResponse(bookmarks.Sanitize(b)))
}

// Update changes only the supplied fields of a bookmark.
// PATCH /bookmarks/{id}
//
// @Summary      Update a bookmark
// @Description  Any subset of title, url, description and rating. url and rating are re-validated.
// @Tags         Bookmarks
// @Accept       json
// @Param        id    path  string           true  "Bookmark ID"
// @Param        body  body  BookmarkRequest  true  "Fields to update"
// @Success      204   "No Content"
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  UnauthorizedResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [patch]
func (h *bookmarksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	b := bookmarkFromContext(r.Context())
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	// An empty title or url counts as not supplied; description may be cleared.
	var patch store.BookmarkPatch
	if req.Title != nil && *req.Title != "" {
		patch.Title = req.Title
	}
	if req.URL != nil && *req.URL != "" {
		patch.URL = req.URL
	}
	patch.Description = req.Description
	ratingText := req.ratingText()

	if patch.Empty() && ratingText == nil {
		h.reject(w, "empty_patch", msgEmptyPatch, logger.String("id", b.ID))
		return
	}

	rating, err := bookmarks.Validate(bookmarks.Candidate{URL: patch.URL, Rating: ratingText})
	if err != nil {
		h.rejectInvalid(w, err)
		return
	}
	patch.Rating = rating

	n, err := h.bookmarks.Update(r.Context(), b.ID, patch)
	if err != nil {
		h.faults.serverError(w, r, "update", err)
		return
	}
	if n == 0 {
		h.notFound(w, b.ID)
		return
	}

	h.log.Info("bookmark updated", logger.String("id", b.ID))
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a bookmark permanently.
// DELETE /bookmarks/{id}
//
// @Summary      Delete a bookmark
// @Tags         Bookmarks
// @Param        id   path  string  true  "Bookmark ID"
// @Success      204  "No Content"
// @Failure      401  {object}  UnauthorizedResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Security     BearerToken
// @Router       /bookmarks/{id} [delete]
func (h *bookmarksAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	b := bookmarkFromContext(r.Context())

	n, err := h.bookmarks.Delete(r.Context(), b.ID)
	if err != nil {
		h.faults.serverError(w, r, "delete", err)
		return
	}
	// Deleted concurrently after the existence check.
	if n == 0 {
		h.notFound(w, b.ID)
		return
	}

	h.log.Info("bookmark deleted", logger.String("id", b.ID))
	w.WriteHeader(http.StatusNoContent)
}

// decode parses the JSON body into a BookmarkRequest, answering 400 on failure.
func (h *bookmarksAPIHandler) decode(w http.ResponseWriter, r *http.Request) (*BookmarkRequest, bool) {
	var req BookmarkRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.reject(w, "bad_body", msgBadBody, logger.Error(err))
		return nil, false
	}
	return &req, true
}

func (h *bookmarksAPIHandler) rejectInvalid(w http.ResponseWriter, err error) {
	var verr *bookmarks.ValidationError
	if !errors.As(err, &verr) {
		h.reject(w, "invalid", err.Error())
		return
	}
	h.reject(w, string(verr.Kind), verr.Error(), logger.String("value", verr.Value))
}

// reject answers 400 and records why.
func (h *bookmarksAPIHandler) reject(w http.ResponseWriter, reason, message string, fields ...logger.Field) {
	metrics.ValidationFailuresTotal.WithLabelValues(reason).Inc()
	h.log.Error(message, append(fields, logger.String("reason", reason))...)
	writeError(w, http.StatusBadRequest, message)
}

func (h *bookmarksAPIHandler) notFound(w http.ResponseWriter, id string) {
	h.log.Info("bookmark not found", logger.String("id", id))
	writeError(w, http.StatusNotFound, msgNotFound)
}

func newUUID() string { return uuid.NewString() }
