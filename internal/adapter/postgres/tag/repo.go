// Package tag implements the Tag repository using PostgreSQL.
// Tags are global and unique by name; the idea_tags join is idempotent.
package tag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Repo provides tag persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tag repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getByNameSQL = `SELECT id, name, color, created_at FROM tags WHERE name = $1`

const createSQL = `
INSERT INTO tags (id, name, color, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, name, color, created_at`

const attachSQL = `
INSERT INTO idea_tags (idea_id, tag_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`

const listByIdeaSQL = `
SELECT t.id, t.name, t.color, t.created_at
FROM tags t
JOIN idea_tags it ON it.tag_id = t.id
WHERE it.idea_id = $1
ORDER BY t.name`

// GetByName returns the tag with the exact name.
// Returns domain.ErrNotFound if no such tag exists.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, getByNameSQL, name)
	t, err := scanTag(row)
	if err != nil {
		return nil, postgres.MapError(err, "tag", name)
	}
	return &t, nil
}

// Create inserts a tag. An empty color falls back to domain.DefaultTagColor.
// Returns domain.ErrAlreadyExists if a tag with that name already exists.
func (r *Repo) Create(ctx context.Context, name, color string) (*domain.Tag, error) {
	if color == "" {
		color = domain.DefaultTagColor
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, createSQL,
		uuid.New(), name, color, time.Now().UTC(),
	)
	t, err := scanTag(row)
	if err != nil {
		return nil, postgres.MapError(err, "tag", name)
	}
	return &t, nil
}

// AttachToIdea links a tag to an idea. Attaching twice is a no-op.
// Returns domain.ErrNotFound if either side does not exist.
func (r *Repo) AttachToIdea(ctx context.Context, ideaID, tagID uuid.UUID) error {
	_, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, attachSQL, ideaID, tagID)
	if err != nil {
		return postgres.MapError(err, "idea_tag", ideaID)
	}
	return nil
}

// ListByIdea returns the tags attached to an idea, ordered by name.
func (r *Repo) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]domain.Tag, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listByIdeaSQL, ideaID)
	if err != nil {
		return nil, postgres.MapError(err, "idea_tag", ideaID)
	}
	defer rows.Close()

	result := []domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("tag.ListByIdea: scan: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "idea_tag", ideaID)
	}
	return result, nil
}

func scanTag(row pgx.Row) (domain.Tag, error) {
	var t domain.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}
