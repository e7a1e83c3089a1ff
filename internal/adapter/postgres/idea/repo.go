// Package idea implements the Idea repository using PostgreSQL.
// Besides plain CRUD it owns the enrichment state transitions, which are
// written as single conditional UPDATE statements so that concurrent writers
// (API re-trigger vs. the enrichment worker) never lose an attempt increment.
package idea

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/ideaflow-backend/internal/adapter/postgres"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Repo provides idea persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new idea repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ideaColumns = []string{
	"id", "owner_id", "content", "title", "summary", "category",
	"enrichment_status", "enrichment_attempts", "last_attempt_at",
	"created_at", "updated_at",
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const createIdeaSQL = `
INSERT INTO ideas (id, owner_id, content, category, enrichment_status, enrichment_attempts, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
RETURNING id, owner_id, content, title, summary, category,
          enrichment_status, enrichment_attempts, last_attempt_at, created_at, updated_at`

const existsSQL = `SELECT EXISTS(SELECT 1 FROM ideas WHERE id = $1)`

const markProcessingSQL = `
UPDATE ideas
SET enrichment_status   = 'processing',
    enrichment_attempts = enrichment_attempts + 1,
    last_attempt_at     = now(),
    updated_at          = now()
WHERE id = $1 AND enrichment_status = 'pending'
RETURNING enrichment_attempts`

const completeEnrichmentSQL = `
UPDATE ideas
SET title             = $2,
    summary           = $3,
    category          = $4,
    enrichment_status = 'completed',
    updated_at        = now()
WHERE id = $1 AND enrichment_status = 'processing'`

const setStatusFromProcessingSQL = `
UPDATE ideas
SET enrichment_status = $2,
    updated_at        = now()
WHERE id = $1 AND enrichment_status = 'processing'`

const resetEnrichmentSQL = `
UPDATE ideas
SET enrichment_status   = 'pending',
    enrichment_attempts = 0,
    last_attempt_at     = NULL,
    updated_at          = now()
WHERE id = $1`

const resetProcessingSQL = `
UPDATE ideas SET enrichment_status = 'pending', updated_at = now()
WHERE enrichment_status = 'processing'`

const retryAllFailedSQL = `
UPDATE ideas
SET enrichment_status   = 'pending',
    enrichment_attempts = 0,
    last_attempt_at     = NULL,
    updated_at          = now()
WHERE enrichment_status = 'failed'`

const statsSQL = `
SELECT
    count(*) FILTER (WHERE enrichment_status = 'pending'),
    count(*) FILTER (WHERE enrichment_status = 'processing'),
    count(*) FILTER (WHERE enrichment_status = 'completed'),
    count(*) FILTER (WHERE enrichment_status = 'failed'),
    count(*)
FROM ideas`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an idea by primary key.
// Returns domain.ErrNotFound if the idea does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Idea, error) {
	query, args, err := psql.Select(ideaColumns...).From("ideas").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("idea.GetByID: build query: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	idea, err := scanIdea(row)
	if err != nil {
		return nil, postgres.MapError(err, "idea", id)
	}
	return &idea, nil
}

// GetByOwner returns an idea only if it belongs to ownerID.
// Returns domain.ErrNotFound otherwise.
func (r *Repo) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Idea, error) {
	query, args, err := psql.Select(ideaColumns...).From("ideas").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("idea.GetByOwner: build query: %w", err)
	}

	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...)
	idea, err := scanIdea(row)
	if err != nil {
		return nil, postgres.MapError(err, "idea", id)
	}
	return &idea, nil
}

// Exists reports whether an idea with the given id exists.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, existsSQL, id).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "idea", id)
	}
	return exists, nil
}

// ListBacklog returns pending ideas with fewer than maxAttempts attempts,
// oldest first. Returns domain.ErrSchemaNotReady if the enrichment columns
// have not been migrated yet.
func (r *Repo) ListBacklog(ctx context.Context, maxAttempts, limit int) ([]domain.Idea, error) {
	query, args, err := psql.Select(ideaColumns...).From("ideas").
		Where(sq.Eq{"enrichment_status": string(domain.EnrichmentStatusPending)}).
		Where(sq.Lt{"enrichment_attempts": maxAttempts}).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("idea.ListBacklog: build query: %w", err)
	}

	return r.queryIdeas(ctx, "idea.ListBacklog", query, args)
}

// ListCompletedByOwner returns up to limit enriched ideas of ownerID, newest
// first, excluding excludeID. Used as context for analysis.
func (r *Repo) ListCompletedByOwner(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]domain.Idea, error) {
	if limit <= 0 {
		return []domain.Idea{}, nil
	}

	query, args, err := psql.Select(ideaColumns...).From("ideas").
		Where(sq.Eq{
			"owner_id":          ownerID,
			"enrichment_status": string(domain.EnrichmentStatusCompleted),
		}).
		Where(sq.NotEq{"id": excludeID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("idea.ListCompletedByOwner: build query: %w", err)
	}

	return r.queryIdeas(ctx, "idea.ListCompletedByOwner", query, args)
}

// GetStats returns idea counts by enrichment status.
func (r *Repo) GetStats(ctx context.Context) (domain.EnrichmentStats, error) {
	var s domain.EnrichmentStats
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, statsSQL).
		Scan(&s.Pending, &s.Processing, &s.Completed, &s.Failed, &s.Total)
	if err != nil {
		return domain.EnrichmentStats{}, postgres.MapError(err, "idea", "stats")
	}
	return s, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new idea and returns the persisted row.
func (r *Repo) Create(ctx context.Context, idea *domain.Idea) (*domain.Idea, error) {
	row := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, createIdeaSQL,
		idea.ID, idea.OwnerID, idea.Content, string(idea.Category), string(idea.EnrichmentStatus),
		idea.CreatedAt, idea.UpdatedAt,
	)
	created, err := scanIdea(row)
	if err != nil {
		return nil, postgres.MapError(err, "idea", idea.ID)
	}
	return &created, nil
}

// MarkProcessing moves a pending idea to processing, increments the attempt
// counter in place and stamps last_attempt_at. Returns the new attempt count.
// Returns domain.ErrConflict if the idea is missing or not pending.
func (r *Repo) MarkProcessing(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, markProcessingSQL, id).Scan(&attempts)
	if err != nil {
		if isNoRows(err) {
			return 0, fmt.Errorf("idea %s: not pending: %w", id, domain.ErrConflict)
		}
		return 0, postgres.MapError(err, "idea", id)
	}
	return attempts, nil
}

// CompleteEnrichment writes the enrichment output and marks the idea completed.
// Returns domain.ErrConflict if the idea is no longer processing (for example
// it was re-triggered while the attempt was in flight).
func (r *Repo) CompleteEnrichment(ctx context.Context, id uuid.UUID, title, summary string, category domain.Category) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, completeEnrichmentSQL, id, title, summary, string(category))
	if err != nil {
		return postgres.MapError(err, "idea", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idea %s: not processing: %w", id, domain.ErrConflict)
	}
	return nil
}

// ReturnToPending moves a processing idea back to pending for a retry.
// The attempt counter is left untouched.
func (r *Repo) ReturnToPending(ctx context.Context, id uuid.UUID) error {
	return r.leaveProcessing(ctx, id, domain.EnrichmentStatusPending)
}

// MarkFailed moves a processing idea to the terminal failed state.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.leaveProcessing(ctx, id, domain.EnrichmentStatusFailed)
}

func (r *Repo) leaveProcessing(ctx context.Context, id uuid.UUID, to domain.EnrichmentStatus) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, setStatusFromProcessingSQL, id, string(to))
	if err != nil {
		return postgres.MapError(err, "idea", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idea %s: not processing: %w", id, domain.ErrConflict)
	}
	return nil
}

// ResetEnrichment unconditionally puts an idea back to pending with zero
// attempts and no last attempt (manual re-trigger).
// Returns domain.ErrNotFound if the idea does not exist.
func (r *Repo) ResetEnrichment(ctx context.Context, id uuid.UUID) error {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, resetEnrichmentSQL, id)
	if err != nil {
		return postgres.MapError(err, "idea", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("idea %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ResetProcessing returns every processing idea to pending. Run at startup:
// with a single worker process, any processing row is a leftover of a crash.
func (r *Repo) ResetProcessing(ctx context.Context) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, resetProcessingSQL)
	if err != nil {
		return 0, postgres.MapError(err, "idea", "processing")
	}
	return int(tag.RowsAffected()), nil
}

// RetryAllFailed resets every failed idea to pending with zero attempts.
func (r *Repo) RetryAllFailed(ctx context.Context) (int, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, retryAllFailedSQL)
	if err != nil {
		return 0, postgres.MapError(err, "idea", "failed")
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func (r *Repo) queryIdeas(ctx context.Context, op, query string, args []any) ([]domain.Idea, error) {
	rows, err := postgres.QuerierFromCtx(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, postgres.MapError(err, "idea", "list"))
	}
	defer rows.Close()

	result := []domain.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		result = append(result, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, postgres.MapError(err, "idea", "list"))
	}
	return result, nil
}

func scanIdea(row pgx.Row) (domain.Idea, error) {
	var (
		idea          domain.Idea
		title         pgtype.Text
		summary       pgtype.Text
		category      string
		status        string
		lastAttemptAt pgtype.Timestamptz
	)

	err := row.Scan(
		&idea.ID, &idea.OwnerID, &idea.Content, &title, &summary, &category,
		&status, &idea.EnrichmentAttempts, &lastAttemptAt,
		&idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return domain.Idea{}, err
	}

	idea.Title = pgTextToPtr(title)
	idea.Summary = pgTextToPtr(summary)
	idea.Category = domain.Category(category)
	idea.EnrichmentStatus = domain.EnrichmentStatus(status)
	idea.LastAttemptAt = pgTimestamptzToPtr(lastAttemptAt)
	return idea, nil
}

func pgTextToPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

func pgTimestamptzToPtr(t pgtype.Timestamptz) *time.Time {
	if t.Valid {
		v := t.Time
		return &v
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
