package idea

import (
	"context"
	"fmt"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
	"github.com/heartmarshall/ideaflow-backend/pkg/ctxutil"
)

// EnrichmentView is the enrichment state of one idea together with the tags
// and outgoing links materialized so far.
type EnrichmentView struct {
	IdeaID string
	State  domain.EnrichmentState
	Tags   []domain.Tag
	Links  []domain.Link
}

// GetEnrichment returns the enrichment state of an idea owned by the caller.
// Tags and links are included as soon as they exist.
func (s *Service) GetEnrichment(ctx context.Context, input IdeaRefInput) (*EnrichmentView, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	idea, err := s.ideas.GetByOwner(ctx, userID, input.IdeaID)
	if err != nil {
		return nil, fmt.Errorf("get idea: %w", err)
	}

	tags, err := s.tags.ListByIdea(ctx, idea.ID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	links, err := s.links.ListFrom(ctx, idea.ID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	return &EnrichmentView{
		IdeaID: idea.ID.String(),
		State:  domain.StateOf(*idea),
		Tags:   tags,
		Links:  links,
	}, nil
}
