// Package enrichment runs the asynchronous idea enrichment pipeline: an
// in-memory task queue drained by a dispatch ticker, a backlog scanner that
// rebuilds tasks from durable state, and an applier that projects analysis
// results onto ideas, tags and links.
package enrichment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

type ideaRepo interface {
	MarkProcessing(ctx context.Context, id uuid.UUID) (int, error)
	CompleteEnrichment(ctx context.Context, id uuid.UUID, title, summary string, category domain.Category) error
	ReturnToPending(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListCompletedByOwner(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]domain.Idea, error)
	ListBacklog(ctx context.Context, maxAttempts, limit int) ([]domain.Idea, error)
	ResetProcessing(ctx context.Context) (int, error)
}

type tagRepo interface {
	GetByName(ctx context.Context, name string) (*domain.Tag, error)
	Create(ctx context.Context, name, color string) (*domain.Tag, error)
	AttachToIdea(ctx context.Context, ideaID, tagID uuid.UUID) error
}

type linkRepo interface {
	Create(ctx context.Context, l domain.Link) (bool, error)
}

type analyzer interface {
	Analyze(ctx context.Context, content string, prior []domain.Idea, ownerID uuid.UUID) (*domain.EnrichmentResult, error)
}

type statsRepo interface {
	GetStats(ctx context.Context) (domain.EnrichmentStats, error)
	RetryAllFailed(ctx context.Context) (int, error)
	ResetProcessing(ctx context.Context) (int, error)
}

// Service exposes operator actions over durable enrichment state.
type Service struct {
	log   *slog.Logger
	ideas statsRepo
}

// NewService creates a new enrichment service.
func NewService(log *slog.Logger, ideas statsRepo) *Service {
	return &Service{
		log:   log.With("service", "enrichment"),
		ideas: ideas,
	}
}

// GetStats returns idea counts by enrichment status.
func (s *Service) GetStats(ctx context.Context) (domain.EnrichmentStats, error) {
	return s.ideas.GetStats(ctx)
}

// RetryAllFailed resets all failed ideas to pending with zero attempts.
// A running worker picks them up on its next backlog scan.
func (s *Service) RetryAllFailed(ctx context.Context) (int, error) {
	n, err := s.ideas.RetryAllFailed(ctx)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "retried all failed ideas", slog.Int("count", n))
	return n, nil
}

// ResetProcessing resets stuck processing ideas back to pending.
func (s *Service) ResetProcessing(ctx context.Context) (int, error) {
	n, err := s.ideas.ResetProcessing(ctx)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "reset processing ideas", slog.Int("count", n))
	return n, nil
}
