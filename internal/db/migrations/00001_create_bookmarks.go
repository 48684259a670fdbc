package migrations

// The bookmarks table is a Go migration because MySQL cannot index or default
// a TEXT primary key, so column types differ by driver.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateBookmarks, downCreateBookmarks)
}

func upCreateBookmarks(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS bookmarks (
    id          VARCHAR(36)  PRIMARY KEY,
    title       VARCHAR(255) NOT NULL,
    url         TEXT         NOT NULL,
    description TEXT         NULL,
    rating      INT          NOT NULL,
    CONSTRAINT bookmarks_rating_range CHECK (rating BETWEEN 1 AND 5)
)`
	default: // sqlite3, postgres
		ddl = `CREATE TABLE IF NOT EXISTS bookmarks (
    id          TEXT    PRIMARY KEY,
    title       TEXT    NOT NULL,
    url         TEXT    NOT NULL,
    description TEXT    NOT NULL DEFAULT '',
    rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5)
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create bookmarks table: %w", err)
	}
	return nil
}

func downCreateBookmarks(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS bookmarks`)
	return err
}
