// Package idea provides the API-facing idea operations: creating an idea,
// reading its enrichment state and re-triggering enrichment.
package idea

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

const MaxContentLength = 5000

type ideaRepo interface {
	Create(ctx context.Context, idea *domain.Idea) (*domain.Idea, error)
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Idea, error)
	ResetEnrichment(ctx context.Context, id uuid.UUID) error
}

type tagRepo interface {
	ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]domain.Tag, error)
}

type linkRepo interface {
	ListFrom(ctx context.Context, fromID uuid.UUID) ([]domain.Link, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// enqueuer is satisfied by the enrichment worker.
type enqueuer interface {
	Enqueue(task domain.AnalysisTask) bool
}

// Service provides idea operations.
type Service struct {
	ideas  ideaRepo
	tags   tagRepo
	links  linkRepo
	tx     txManager
	worker enqueuer
	log    *slog.Logger
}

// NewService creates a new idea service.
func NewService(
	log *slog.Logger,
	ideas ideaRepo,
	tags tagRepo,
	links linkRepo,
	tx txManager,
	worker enqueuer,
) *Service {
	return &Service{
		ideas:  ideas,
		tags:   tags,
		links:  links,
		tx:     tx,
		worker: worker,
		log:    log.With("service", "idea"),
	}
}
