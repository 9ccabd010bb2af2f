// Package index provides a SQLite-backed index of vault ideas with optional
// FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS ideas (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL DEFAULT '',
	type             TEXT NOT NULL DEFAULT '',
	creative_status  TEXT NOT NULL DEFAULT '',
	production_stage TEXT NOT NULL DEFAULT '',
	script           TEXT NOT NULL DEFAULT '',
	checksum         TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS idea_links (
	idea_id  TEXT NOT NULL,
	category TEXT NOT NULL,
	position INTEGER NOT NULL,
	url      TEXT NOT NULL,
	PRIMARY KEY (idea_id, category, position)
);

CREATE INDEX IF NOT EXISTS idx_ideas_updated ON ideas(updated_at);
CREATE INDEX IF NOT EXISTS idx_idea_links_url ON idea_links(url);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
