package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedIdea inserts a pending idea for ownerID. Returns the persisted domain.Idea.
func SeedIdea(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, content string) domain.Idea {
	t.Helper()

	idea := domain.NewIdea(ownerID, content, time.Now().UTC().Truncate(time.Microsecond))

	_, err := pool.Exec(context.Background(),
		`INSERT INTO ideas (id, owner_id, content, category, enrichment_status, enrichment_attempts, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`,
		idea.ID, idea.OwnerID, idea.Content, string(idea.Category), string(idea.EnrichmentStatus),
		idea.CreatedAt, idea.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedIdea: %v", err)
	}

	return idea
}

// SetEnrichment forces an idea's enrichment columns, bypassing the state machine.
func SetEnrichment(t *testing.T, pool *pgxpool.Pool, ideaID uuid.UUID, status domain.EnrichmentStatus, attempts int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`UPDATE ideas SET enrichment_status = $2, enrichment_attempts = $3 WHERE id = $1`,
		ideaID, string(status), attempts,
	)
	if err != nil {
		t.Fatalf("testhelper: SetEnrichment: %v", err)
	}
}

// CountRows returns SELECT count(*) FROM table WHERE <where>.
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT count(*) FROM `+table+` WHERE `+where, args...,
	).Scan(&n)
	if err != nil {
		t.Fatalf("testhelper: CountRows %s: %v", table, err)
	}
	return n
}
