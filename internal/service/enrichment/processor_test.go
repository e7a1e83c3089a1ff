package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

func newTestProcessor(s *memStore, a analyzer) *Processor {
	m := newTestMetrics()
	applier := NewApplier(newTestLogger(), s, memTags{s}, memLinks{s}, 2, m)
	return NewProcessor(newTestLogger(), s, a, applier, testPolicy(), m)
}

func staticResult(r *domain.EnrichmentResult) *analyzerMock {
	return &analyzerMock{
		AnalyzeFunc: func(context.Context, string, []domain.Idea, uuid.UUID) (*domain.EnrichmentResult, error) {
			return r, nil
		},
	}
}

func failing(err error) *analyzerMock {
	return &analyzerMock{
		AnalyzeFunc: func(context.Context, string, []domain.Idea, uuid.UUID) (*domain.EnrichmentResult, error) {
			return nil, err
		},
	}
}

func TestProcessor_BuyMilk(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	owner := uuid.New()
	other := s.seed(t, owner, "groceries list")
	s.set(other.ID, domain.EnrichmentStatusCompleted, 1)
	i := s.seed(t, owner, "buy milk")

	a := staticResult(&domain.EnrichmentResult{
		Title:        "买牛奶",
		Category:     domain.CategoryTodo,
		Tags:         []domain.ProposedTag{{Name: "购物"}},
		RelatedIdeas: []domain.RelatedIdea{{IdeaID: other.ID.String(), Reason: "shopping", Strength: 0.9}},
	})

	outcome := newTestProcessor(s, a).Process(context.Background(), domain.TaskFromIdea(i))
	require.Equal(t, OutcomeCompleted, outcome)

	got := s.get(i.ID)
	assert.Equal(t, domain.EnrichmentStatusCompleted, got.EnrichmentStatus)
	require.NotNil(t, got.Title)
	assert.Equal(t, "买牛奶", *got.Title)
	assert.Equal(t, domain.CategoryTodo, got.Category)
	assert.Equal(t, 1, got.EnrichmentAttempts)
	assert.NotNil(t, got.LastAttemptAt)
	assert.Equal(t, []string{"购物"}, s.tagNamesOf(i.ID))
	assert.Empty(t, s.linksFrom(i.ID))
}

func TestProcessor_PassesOwnerContext(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	owner := uuid.New()
	mine := s.seed(t, owner, "mine")
	s.set(mine.ID, domain.EnrichmentStatusCompleted, 1)
	pending := s.seed(t, owner, "still pending")
	foreign := s.seed(t, uuid.New(), "foreign")
	s.set(foreign.ID, domain.EnrichmentStatusCompleted, 1)
	i := s.seed(t, owner, "new one")

	a := staticResult(&domain.EnrichmentResult{Title: "t", Category: domain.CategoryPlan})
	newTestProcessor(s, a).Process(context.Background(), domain.TaskFromIdea(i))

	calls := a.AnalyzeCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "new one", calls[0].Content)
	assert.Equal(t, owner, calls[0].OwnerID)
	require.Len(t, calls[0].Prior, 1)
	assert.Equal(t, mine.ID, calls[0].Prior[0].ID)
	assert.NotEqual(t, pending.ID, calls[0].Prior[0].ID)

	_, hasDeadline := calls[0].Ctx.Deadline()
	assert.True(t, hasDeadline, "analysis must run under a timeout")
}

func TestProcessor_RetryThenFail(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	i := s.seed(t, uuid.New(), "flaky")
	p := newTestProcessor(s, failing(&domain.ServiceError{Kind: domain.ServiceErrorTransient, StatusCode: 503, Err: errors.New("unavailable")}))

	for attempt := 1; attempt <= 2; attempt++ {
		require.Equal(t, OutcomeRetry, p.Process(context.Background(), domain.TaskFromIdea(i)), "attempt %d", attempt)
		got := s.get(i.ID)
		assert.Equal(t, domain.EnrichmentStatusPending, got.EnrichmentStatus)
		assert.Equal(t, attempt, got.EnrichmentAttempts)
	}

	require.Equal(t, OutcomeFailed, p.Process(context.Background(), domain.TaskFromIdea(i)))
	got := s.get(i.ID)
	assert.Equal(t, domain.EnrichmentStatusFailed, got.EnrichmentStatus)
	assert.Equal(t, 3, got.EnrichmentAttempts)

	// Failed is terminal: further tasks are dropped without calling analysis.
	a := failing(errors.New("should not be called"))
	assert.Equal(t, OutcomeSkipped, newTestProcessor(s, a).Process(context.Background(), domain.TaskFromIdea(i)))
	assert.Empty(t, a.AnalyzeCalls())
}

func TestProcessor_AuthErrorIsRetried(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	i := s.seed(t, uuid.New(), "x")
	p := newTestProcessor(s, failing(&domain.ServiceError{Kind: domain.ServiceErrorAuth, StatusCode: 401, Err: errors.New("bad key")}))

	assert.Equal(t, OutcomeRetry, p.Process(context.Background(), domain.TaskFromIdea(i)))
	assert.Equal(t, domain.EnrichmentStatusPending, s.get(i.ID).EnrichmentStatus)
}

func TestProcessor_CompletionWriteFailureRetries(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	i := s.seed(t, uuid.New(), "x")
	s.completeErr = errors.New("connection reset")
	p := newTestProcessor(s, staticResult(&domain.EnrichmentResult{Title: "t", Category: domain.CategoryPlan}))

	assert.Equal(t, OutcomeRetry, p.Process(context.Background(), domain.TaskFromIdea(i)))
	assert.Equal(t, domain.EnrichmentStatusPending, s.get(i.ID).EnrichmentStatus)
}

func TestProcessor_StatusWriteFailureIsUnsettled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		attempts    int
		want        Outcome
		afterSettle domain.EnrichmentStatus
	}{
		{name: "retry pending", attempts: 0, want: OutcomeRetryUnsettled, afterSettle: domain.EnrichmentStatusPending},
		{name: "last attempt", attempts: 2, want: OutcomeFailedUnsettled, afterSettle: domain.EnrichmentStatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newMemStore()
			i := s.seed(t, uuid.New(), "x")
			s.set(i.ID, domain.EnrichmentStatusPending, tt.attempts)
			s.leaveFailures = 1
			p := newTestProcessor(s, failing(errors.New("unavailable")))

			require.Equal(t, tt.want, p.Process(context.Background(), domain.TaskFromIdea(i)))
			assert.Equal(t, domain.EnrichmentStatusProcessing, s.get(i.ID).EnrichmentStatus)

			require.NoError(t, p.Settle(context.Background(), i.ID, tt.want))
			assert.Equal(t, tt.afterSettle, s.get(i.ID).EnrichmentStatus)
			assert.ErrorIs(t, p.Settle(context.Background(), i.ID, tt.want), domain.ErrConflict)
		})
	}
}

func TestProcessor_Settle_NothingToSettle(t *testing.T) {
	t.Parallel()

	p := newTestProcessor(newMemStore(), failing(errors.New("unused")))
	assert.Error(t, p.Settle(context.Background(), uuid.New(), OutcomeRetry))
}

func TestProcessor_RetriggerDuringAttempt(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	i := s.seed(t, uuid.New(), "x")

	a := &analyzerMock{
		AnalyzeFunc: func(context.Context, string, []domain.Idea, uuid.UUID) (*domain.EnrichmentResult, error) {
			// Manual re-trigger lands while the call is in flight.
			s.set(i.ID, domain.EnrichmentStatusPending, 0)
			return &domain.EnrichmentResult{Title: "stale", Category: domain.CategoryPlan, Tags: []domain.ProposedTag{{Name: "stale"}}}, nil
		},
	}

	assert.Equal(t, OutcomeSkipped, newTestProcessor(s, a).Process(context.Background(), domain.TaskFromIdea(i)))

	got := s.get(i.ID)
	assert.Equal(t, domain.EnrichmentStatusPending, got.EnrichmentStatus)
	assert.Equal(t, 0, got.EnrichmentAttempts)
	assert.Nil(t, got.Title)
	assert.Empty(t, s.tagNamesOf(i.ID))
}

func TestProcessor_MissingIdeaIsSkipped(t *testing.T) {
	t.Parallel()

	s := newMemStore()
	a := failing(errors.New("should not be called"))

	outcome := newTestProcessor(s, a).Process(context.Background(), task(uuid.New()))
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Empty(t, a.AnalyzeCalls())
}
