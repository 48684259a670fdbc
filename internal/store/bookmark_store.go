package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Bookmark represents a row in the bookmarks table.
type Bookmark struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	URL         string `db:"url"`
	Description string `db:"description"`
	Rating      int    `db:"rating"`
}

// BookmarkPatch lists the columns a partial update should change.
// Nil fields are left untouched.
type BookmarkPatch struct {
	Title       *string
	URL         *string
	Description *string
	Rating      *int
}

// Empty reports whether the patch would change nothing.
func (p BookmarkPatch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Description == nil && p.Rating == nil
}

const selectBookmark = `SELECT id, title, url, COALESCE(description, '') AS description, rating FROM bookmarks`

// BookmarkStore is the sqlx-backed implementation of BookmarkStoreIface.
type BookmarkStore struct {
	db *sqlx.DB
}

func NewBookmarkStore(db *sqlx.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *BookmarkStore) q(query string) string { return s.db.Rebind(query) }

// ListAll returns every bookmark in the store's default order.
func (s *BookmarkStore) ListAll(ctx context.Context) ([]*Bookmark, error) {
	bookmarks := []*Bookmark{}
	if err := s.db.SelectContext(ctx, &bookmarks, selectBookmark); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// GetByID returns the bookmark with the given id, or nil with a nil error
// when no such bookmark exists.
func (s *BookmarkStore) GetByID(ctx context.Context, id string) (*Bookmark, error) {
	var b Bookmark
	err := s.db.GetContext(ctx, &b, s.q(selectBookmark+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Insert persists b as given, including its caller-assigned id, and returns
// the stored row.
func (s *BookmarkStore) Insert(ctx context.Context, b *Bookmark) (*Bookmark, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO bookmarks (id, title, url, description, rating)
		VALUES (?, ?, ?, ?, ?)
	`), b.ID, b.Title, b.URL, b.Description, b.Rating)
	if err != nil {
		return nil, err
	}

	stored, err := s.GetByID(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

// Update applies the non-nil fields of p to the bookmark and returns the
// number of rows affected.
func (s *BookmarkStore) Update(ctx context.Context, id string, p BookmarkPatch) (int64, error) {
	if p.Empty() {
		return 0, ErrEmptyPatch
	}

	var (
		sets []string
		args []any
	)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *p.URL)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, s.q(`UPDATE bookmarks SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the bookmark and returns the number of rows affected;
// zero means nothing matched.
func (s *BookmarkStore) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM bookmarks WHERE id = ?`), id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the total number of stored bookmarks.
func (s *BookmarkStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bookmarks`); err != nil {
		return 0, err
	}
	return n, nil
}
