package idea

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
	"github.com/heartmarshall/ideaflow-backend/pkg/ctxutil"
)

// RetriggerEnrichment resets an idea to pending with zero attempts, whatever
// its current state, and submits a fresh task. Previous title, tags and
// links stay until the new result overwrites them.
func (s *Service) RetriggerEnrichment(ctx context.Context, input IdeaRefInput) (*domain.EnrichmentState, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var idea *domain.Idea
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		idea, err = s.ideas.GetByOwner(txCtx, userID, input.IdeaID)
		if err != nil {
			return fmt.Errorf("get idea: %w", err)
		}
		if err := s.ideas.ResetEnrichment(txCtx, idea.ID); err != nil {
			return fmt.Errorf("reset enrichment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	previous := idea.EnrichmentStatus
	idea.EnrichmentStatus = domain.EnrichmentStatusPending
	idea.EnrichmentAttempts = 0
	idea.LastAttemptAt = nil

	queued := s.worker.Enqueue(domain.TaskFromIdea(*idea))

	s.log.InfoContext(ctx, "enrichment re-triggered",
		slog.String("user_id", userID.String()),
		slog.String("idea_id", idea.ID.String()),
		slog.String("previous_status", previous.String()),
		slog.Bool("queued", queued),
	)

	state := domain.StateOf(*idea)
	return &state, nil
}
