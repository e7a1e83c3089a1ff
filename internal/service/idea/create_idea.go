package idea

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
	"github.com/heartmarshall/ideaflow-backend/pkg/ctxutil"
)

// CreateIdea stores a new idea in pending state and submits it for
// enrichment. Enrichment never blocks or fails creation.
func (s *Service) CreateIdea(ctx context.Context, input CreateIdeaInput) (*domain.Idea, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	draft := domain.NewIdea(userID, strings.TrimSpace(input.Content), time.Now().UTC())

	created, err := s.ideas.Create(ctx, &draft)
	if err != nil {
		return nil, fmt.Errorf("create idea: %w", err)
	}

	queued := s.worker.Enqueue(domain.TaskFromIdea(*created))

	s.log.InfoContext(ctx, "idea created",
		slog.String("user_id", userID.String()),
		slog.String("idea_id", created.ID.String()),
		slog.Bool("queued", queued),
	)

	return created, nil
}
