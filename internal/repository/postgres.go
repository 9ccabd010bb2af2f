package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/starford/socialgram/internal/apperr"
	"github.com/starford/socialgram/internal/models"
)

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS content_ideas (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	type             TEXT NOT NULL,
	creative_status  TEXT NOT NULL,
	production_stage TEXT NOT NULL,
	reference_links  TEXT[] NOT NULL DEFAULT '{}',
	deployment_links TEXT[] NOT NULL DEFAULT '{}',
	shoot_file_links TEXT[] NOT NULL DEFAULT '{}',
	edit_file_links  TEXT[] NOT NULL DEFAULT '{}',
	script           TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_ideas_updated ON content_ideas(updated_at DESC);
`

const ideaColumns = `id, title, type, creative_status, production_stage,
	reference_links, deployment_links, shoot_file_links, edit_file_links,
	script, created_at, updated_at`

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

// Postgres is a Repository backed by a hosted Postgres database.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Repository = (*Postgres)(nil)
	_ Searcher   = (*Postgres)(nil)
	_ LinkFinder = (*Postgres)(nil)
)

// OpenPostgres opens a connection pool and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// NewPostgres applies the schema and returns the repository.
func NewPostgres(ctx context.Context, db *sql.DB) (*Postgres, error) {
	if _, err := db.ExecContext(ctx, postgresSchemaSQL); err != nil {
		return nil, fmt.Errorf("postgres: apply schema: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (models.ContentIdea, error) {
	var i models.ContentIdea
	err := row.Scan(&i.ID, &i.Title, &i.Type, &i.CreativeStatus, &i.ProductionStage,
		pq.Array(&i.ReferenceLinks), pq.Array(&i.DeploymentLinks),
		pq.Array(&i.ShootFileLinks), pq.Array(&i.EditFileLinks),
		&i.Script, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return models.ContentIdea{}, err
	}
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	i.Normalize()
	return i, nil
}

// FetchAll returns every idea, most recently updated first.
func (p *Postgres) FetchAll(ctx context.Context) ([]models.ContentIdea, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+ideaColumns+` FROM content_ideas ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	out := []models.ContentIdea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, idea)
	}
	return out, rows.Err()
}

// FetchByID returns one idea.
func (p *Postgres) FetchByID(ctx context.Context, id string) (models.ContentIdea, error) {
	idea, err := scanIdea(p.db.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM content_ideas WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContentIdea{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("postgres: fetch %s: %w", id, err)
	}
	return idea, nil
}

// Insert stores a new idea.
func (p *Postgres) Insert(ctx context.Context, idea models.ContentIdea) (models.ContentIdea, error) {
	idea = idea.Clone()
	idea.Normalize()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO content_ideas (`+ideaColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, idea.ID, idea.Title, idea.Type, idea.CreativeStatus, idea.ProductionStage,
		pq.Array(idea.ReferenceLinks), pq.Array(idea.DeploymentLinks),
		pq.Array(idea.ShootFileLinks), pq.Array(idea.EditFileLinks),
		idea.Script, idea.CreatedAt, idea.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return models.ContentIdea{}, apperr.ErrAlreadyExists
		}
		return models.ContentIdea{}, fmt.Errorf("postgres: insert: %w", err)
	}
	return idea, nil
}

// Update merges patch into the stored row inside a transaction.
func (p *Postgres) Update(ctx context.Context, id string, patch models.Patch) (models.ContentIdea, error) {
	if err := apperr.FromValidation(patch.Validate()); err != nil {
		return models.ContentIdea{}, err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	current, err := scanIdea(tx.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM content_ideas WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContentIdea{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("postgres: lock %s: %w", id, err)
	}

	next := current.Apply(patch, p.now())
	_, err = tx.ExecContext(ctx, `
		UPDATE content_ideas SET
			title = $2, type = $3, creative_status = $4, production_stage = $5,
			reference_links = $6, deployment_links = $7, shoot_file_links = $8, edit_file_links = $9,
			script = $10, updated_at = $11
		WHERE id = $1
	`, id, next.Title, next.Type, next.CreativeStatus, next.ProductionStage,
		pq.Array(next.ReferenceLinks), pq.Array(next.DeploymentLinks),
		pq.Array(next.ShootFileLinks), pq.Array(next.EditFileLinks),
		next.Script, next.UpdatedAt)
	if err != nil {
		return models.ContentIdea{}, fmt.Errorf("postgres: update %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return models.ContentIdea{}, fmt.Errorf("postgres: commit: %w", err)
	}
	return next, nil
}

// Delete removes an idea.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM content_ideas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Search runs a case-insensitive substring match over titles and scripts.
func (p *Postgres) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, left(script, 200)
		FROM content_ideas
		WHERE title ILIKE $1 ESCAPE '\' OR script ILIKE $1 ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT $2
	`, LikePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps query for a LIKE ... ESCAPE '\' match so that it is
// found as a literal substring.
func LikePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// IdeasLinking returns the ids of ideas that list url in any link array.
func (p *Postgres) IdeasLinking(ctx context.Context, url string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id FROM content_ideas
		WHERE $1 = ANY(reference_links) OR $1 = ANY(deployment_links)
		   OR $1 = ANY(shoot_file_links) OR $1 = ANY(edit_file_links)
		ORDER BY updated_at DESC
	`, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: ideas linking: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
