// Package link implements the Link repository using PostgreSQL.
package link

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Repo provides link persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new link repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO links (id, from_idea_id, to_idea_id, reason, strength, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (from_idea_id, to_idea_id) DO NOTHING`

const listFromSQL = `
SELECT id, from_idea_id, to_idea_id, reason, strength, created_at
FROM links
WHERE from_idea_id = $1
ORDER BY strength DESC, created_at`

// Create inserts a directed link. Returns false when the pair already exists.
// Returns domain.ErrNotFound if either idea does not exist and
// domain.ErrValidation if strength is outside (0, 1].
func (r *Repo) Create(ctx context.Context, l domain.Link) (bool, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, createSQL,
		l.ID, l.FromIdeaID, l.ToIdeaID, l.Reason, l.Strength, l.CreatedAt,
	)
	if err != nil {
		return false, postgres.MapError(err, "link", fmt.Sprintf("%s->%s", l.FromIdeaID, l.ToIdeaID))
	}
	return tag.RowsAffected() == 1, nil
}

// ListFrom returns outgoing links of an idea, strongest first.
func (r *Repo) ListFrom(ctx context.Context, fromID uuid.UUID) ([]domain.Link, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, listFromSQL, fromID)
	if err != nil {
		return nil, postgres.MapError(err, "link", fromID)
	}
	defer rows.Close()

	result := []domain.Link{}
	for rows.Next() {
		var (
			l        domain.Link
			strength float32
		)
		if err := rows.Scan(&l.ID, &l.FromIdeaID, &l.ToIdeaID, &l.Reason, &strength, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("link.ListFrom: scan: %w", err)
		}
		l.Strength = float64(strength)
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "link", fromID)
	}
	return result, nil
}
