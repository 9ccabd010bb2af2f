//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS ideas_fts USING fts5(
	id UNINDEXED,
	title,
	script,
	tokenize = 'unicode61 remove_diacritics 2'
);`

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(ftsSchemaSQL)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, script string) error {
	ftsDelete(tx, id)
	if _, err := tx.Exec(`INSERT INTO ideas_fts (id, title, script) VALUES (?, ?, ?)`, id, title, script); err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM ideas_fts WHERE id = ?`, id)
}

// matchExpr turns free text into an FTS5 expression where every word is a
// quoted prefix term, so punctuation like "c++" or "AND" is never parsed as
// query syntax.
func matchExpr(query string) string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"*`)
	}
	return strings.Join(terms, " ")
}

// Search matches titles and scripts with FTS5. Title hits rank above script hits.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	expr := matchExpr(query)
	if expr == "" {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT id, title, snippet(ideas_fts, 2, '', '', '...', 24)
		FROM ideas_fts
		WHERE ideas_fts MATCH ?
		ORDER BY bm25(ideas_fts, 0.0, 10.0, 1.0)
		LIMIT ?`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanHits(rows)
}
