package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Scanner rebuilds analysis tasks from ideas that are durably pending but may
// have been lost from the in-memory queue.
type Scanner struct {
	ideas  ideaRepo
	policy Policy
	log    *slog.Logger
}

// NewScanner creates a Scanner.
func NewScanner(log *slog.Logger, ideas ideaRepo, policy Policy) *Scanner {
	return &Scanner{
		ideas:  ideas,
		policy: policy,
		log:    log.With("component", "scanner"),
	}
}

// Scan returns up to BacklogBatchSize tasks for pending ideas that still have
// retries left, oldest first. A schema without enrichment columns yields no
// tasks and no error.
func (s *Scanner) Scan(ctx context.Context) ([]domain.AnalysisTask, error) {
	ideas, err := s.ideas.ListBacklog(ctx, s.policy.MaxRetries, s.policy.BacklogBatchSize)
	if err != nil {
		if errors.Is(err, domain.ErrSchemaNotReady) {
			s.log.InfoContext(ctx, "enrichment columns not available yet, skipping backlog scan")
			return nil, nil
		}
		return nil, fmt.Errorf("enrichment.Scan: %w", err)
	}

	tasks := make([]domain.AnalysisTask, 0, len(ideas))
	for _, i := range ideas {
		tasks = append(tasks, domain.TaskFromIdea(i))
	}
	return tasks, nil
}
