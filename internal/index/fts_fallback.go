//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

// Without FTS5 the ideas table itself is scanned with LIKE.
func initFTS(*sql.DB) error { return nil }

func ftsUpsert(*sql.Tx, string, string, string) error { return nil }

func ftsDelete(*sql.Tx, string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches the query as a literal substring of titles and scripts.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, substr(script, 1, 120)
		FROM ideas
		WHERE title LIKE ?1 ESCAPE '\' OR script LIKE ?1 ESCAPE '\'
		ORDER BY (title LIKE ?1 ESCAPE '\') DESC, updated_at DESC
		LIMIT ?2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
