package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
)

// tsLayout is fixed-width so updated_at sorts lexicographically.
const tsLayout = "2006-01-02T15:04:05.000000Z"

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	return time.Parse(tsLayout, s)
}

// UpsertIdea inserts or replaces an idea, its FTS entry and its links within a transaction.
func (db *DB) UpsertIdea(idea models.ContentIdea, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO ideas (id, title, type, creative_status, production_stage, script, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title            = excluded.title,
			type             = excluded.type,
			creative_status  = excluded.creative_status,
			production_stage = excluded.production_stage,
			script           = excluded.script,
			checksum         = excluded.checksum,
			created_at       = excluded.created_at,
			updated_at       = excluded.updated_at
	`, idea.ID, idea.Title, string(idea.Type), string(idea.CreativeStatus), string(idea.ProductionStage),
		idea.Script, checksum, formatTS(idea.CreatedAt), formatTS(idea.UpdatedAt))
	if err != nil {
		return fmt.Errorf("index: upsert idea: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, idea.ID, idea.Title, idea.Script); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert in list order.
	if _, err := tx.Exec(`DELETE FROM idea_links WHERE idea_id = ?`, idea.ID); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO idea_links (idea_id, category, position, url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range models.LinkCategoryValues {
		for pos, url := range idea.Links(c) {
			if _, err := stmt.Exec(idea.ID, string(c), pos, url); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteIdea removes an idea, its FTS entry and its links.
func (db *DB) DeleteIdea(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM idea_links WHERE idea_id = ?`, id); err != nil {
		return fmt.Errorf("index: delete links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ideas WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete idea: %w", err)
	}
	return tx.Commit()
}

// GetIdea returns one indexed idea or apperr.ErrNotFound.
func (db *DB) GetIdea(id string) (models.ContentIdea, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, type, creative_status, production_stage, script, created_at, updated_at
		FROM ideas WHERE id = ?`, id)
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("index: get idea: %w", err)
	}
	ideas, err := db.collect(rows)
	if err != nil {
		return models.ContentIdea{}, err
	}
	if len(ideas) == 0 {
		return models.ContentIdea{}, apperr.ErrNotFound
	}
	return ideas[0], nil
}

// ListIdeas returns every indexed idea, most recently updated first.
func (db *DB) ListIdeas() ([]models.ContentIdea, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, type, creative_status, production_stage, script, created_at, updated_at
		FROM ideas ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("index: list ideas: %w", err)
	}
	return db.collect(rows)
}

// collect scans idea rows, then attaches their links in position order.
func (db *DB) collect(rows *sql.Rows) ([]models.ContentIdea, error) {
	ideas, err := scanIdeas(rows)
	if err != nil || len(ideas) == 0 {
		return ideas, err
	}

	pos := make(map[string]int, len(ideas))
	for i, idea := range ideas {
		pos[idea.ID] = i
	}

	var linkRows *sql.Rows
	if len(ideas) == 1 {
		linkRows, err = db.conn.Query(`SELECT idea_id, category, url FROM idea_links WHERE idea_id = ? ORDER BY category, position`, ideas[0].ID)
	} else {
		linkRows, err = db.conn.Query(`SELECT idea_id, category, url FROM idea_links ORDER BY idea_id, category, position`)
	}
	if err != nil {
		return nil, fmt.Errorf("index: links: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var id, category, url string
		if err := linkRows.Scan(&id, &category, &url); err != nil {
			return nil, fmt.Errorf("index: scan link: %w", err)
		}
		i, ok := pos[id]
		if !ok {
			continue
		}
		idea := &ideas[i]
		switch models.LinkCategory(category) {
		case models.LinksReference:
			idea.ReferenceLinks = append(idea.ReferenceLinks, url)
		case models.LinksDeployment:
			idea.DeploymentLinks = append(idea.DeploymentLinks, url)
		case models.LinksShoot:
			idea.ShootFileLinks = append(idea.ShootFileLinks, url)
		case models.LinksEdit:
			idea.EditFileLinks = append(idea.EditFileLinks, url)
		}
	}
	return ideas, linkRows.Err()
}

func scanIdeas(rows *sql.Rows) ([]models.ContentIdea, error) {
	defer rows.Close()
	ideas := []models.ContentIdea{}
	for rows.Next() {
		var (
			idea             models.ContentIdea
			created, updated string
		)
		if err := rows.Scan(&idea.ID, &idea.Title, &idea.Type, &idea.CreativeStatus, &idea.ProductionStage,
			&idea.Script, &created, &updated); err != nil {
			return nil, fmt.Errorf("index: scan idea: %w", err)
		}
		var err error
		if idea.CreatedAt, err = parseTS(created); err != nil {
			return nil, fmt.Errorf("index: created_at for %s: %w", idea.ID, err)
		}
		if idea.UpdatedAt, err = parseTS(updated); err != nil {
			return nil, fmt.Errorf("index: updated_at for %s: %w", idea.ID, err)
		}
		idea.Normalize()
		ideas = append(ideas, idea)
	}
	return ideas, rows.Err()
}

// GetChecksum returns the stored checksum for an idea, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM ideas WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id → checksum for every indexed idea.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM ideas`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// IdeasLinking returns the IDs of ideas that list url in any link category.
func (db *DB) IdeasLinking(url string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT idea_id FROM idea_links WHERE url = ? ORDER BY idea_id`, url)
	if err != nil {
		return nil, fmt.Errorf("index: ideas linking: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanHits(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("index: scan hit: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
