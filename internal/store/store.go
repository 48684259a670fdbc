package store

import (
	"context"
	"errors"
)

// ErrEmptyPatch is returned by Update when the patch carries no fields.
var ErrEmptyPatch = errors.New("bookmark patch has no fields")

// BookmarkStoreIface exposes all bookmark persistence operations.
// No handler may query the DB directly; all access goes through this interface.
// Implementations return store faults unchanged and never validate or sanitize.
type BookmarkStoreIface interface {
	ListAll(ctx context.Context) ([]*Bookmark, error)
	GetByID(ctx context.Context, id string) (*Bookmark, error)
	Insert(ctx context.Context, b *Bookmark) (*Bookmark, error)
	Update(ctx context.Context, id string, p BookmarkPatch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Count(ctx context.Context) (int, error)
}

var _ BookmarkStoreIface = (*BookmarkStore)(nil)
