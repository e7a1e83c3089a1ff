package enrichment

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// analyzerMock
// ---------------------------------------------------------------------------

var _ analyzer = &analyzerMock{}

type analyzerMock struct {
	AnalyzeFunc func(ctx context.Context, content string, prior []domain.Idea, ownerID uuid.UUID) (*domain.EnrichmentResult, error)

	calls struct {
		Analyze []struct {
			Ctx     context.Context
			Content string
			Prior   []domain.Idea
			OwnerID uuid.UUID
		}
	}
	lockAnalyze sync.RWMutex
}

func (mock *analyzerMock) Analyze(ctx context.Context, content string, prior []domain.Idea, ownerID uuid.UUID) (*domain.EnrichmentResult, error) {
	if mock.AnalyzeFunc == nil {
		panic("analyzerMock.AnalyzeFunc: method is nil but analyzer.Analyze was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Content string
		Prior   []domain.Idea
		OwnerID uuid.UUID
	}{Ctx: ctx, Content: content, Prior: prior, OwnerID: ownerID}
	mock.lockAnalyze.Lock()
	mock.calls.Analyze = append(mock.calls.Analyze, callInfo)
	mock.lockAnalyze.Unlock()
	return mock.AnalyzeFunc(ctx, content, prior, ownerID)
}

func (mock *analyzerMock) AnalyzeCalls() []struct {
	Ctx     context.Context
	Content string
	Prior   []domain.Idea
	OwnerID uuid.UUID
} {
	mock.lockAnalyze.RLock()
	calls := mock.calls.Analyze
	mock.lockAnalyze.RUnlock()
	return calls
}

// ---------------------------------------------------------------------------
// statsRepoMock
// ---------------------------------------------------------------------------

var _ statsRepo = &statsRepoMock{}

type statsRepoMock struct {
	GetStatsFunc        func(ctx context.Context) (domain.EnrichmentStats, error)
	RetryAllFailedFunc  func(ctx context.Context) (int, error)
	ResetProcessingFunc func(ctx context.Context) (int, error)

	calls struct {
		GetStats        []struct{ Ctx context.Context }
		RetryAllFailed  []struct{ Ctx context.Context }
		ResetProcessing []struct{ Ctx context.Context }
	}
	lockGetStats        sync.RWMutex
	lockRetryAllFailed  sync.RWMutex
	lockResetProcessing sync.RWMutex
}

func (mock *statsRepoMock) GetStats(ctx context.Context) (domain.EnrichmentStats, error) {
	if mock.GetStatsFunc == nil {
		panic("statsRepoMock.GetStatsFunc: method is nil but statsRepo.GetStats was just called")
	}
	mock.lockGetStats.Lock()
	mock.calls.GetStats = append(mock.calls.GetStats, struct{ Ctx context.Context }{Ctx: ctx})
	mock.lockGetStats.Unlock()
	return mock.GetStatsFunc(ctx)
}

func (mock *statsRepoMock) GetStatsCalls() []struct{ Ctx context.Context } {
	mock.lockGetStats.RLock()
	calls := mock.calls.GetStats
	mock.lockGetStats.RUnlock()
	return calls
}

func (mock *statsRepoMock) RetryAllFailed(ctx context.Context) (int, error) {
	if mock.RetryAllFailedFunc == nil {
		panic("statsRepoMock.RetryAllFailedFunc: method is nil but statsRepo.RetryAllFailed was just called")
	}
	mock.lockRetryAllFailed.Lock()
	mock.calls.RetryAllFailed = append(mock.calls.RetryAllFailed, struct{ Ctx context.Context }{Ctx: ctx})
	mock.lockRetryAllFailed.Unlock()
	return mock.RetryAllFailedFunc(ctx)
}

func (mock *statsRepoMock) RetryAllFailedCalls() []struct{ Ctx context.Context } {
	mock.lockRetryAllFailed.RLock()
	calls := mock.calls.RetryAllFailed
	mock.lockRetryAllFailed.RUnlock()
	return calls
}

func (mock *statsRepoMock) ResetProcessing(ctx context.Context) (int, error) {
	if mock.ResetProcessingFunc == nil {
		panic("statsRepoMock.ResetProcessingFunc: method is nil but statsRepo.ResetProcessing was just called")
	}
	mock.lockResetProcessing.Lock()
	mock.calls.ResetProcessing = append(mock.calls.ResetProcessing, struct{ Ctx context.Context }{Ctx: ctx})
	mock.lockResetProcessing.Unlock()
	return mock.ResetProcessingFunc(ctx)
}

func (mock *statsRepoMock) ResetProcessingCalls() []struct{ Ctx context.Context } {
	mock.lockResetProcessing.RLock()
	calls := mock.calls.ResetProcessing
	mock.lockResetProcessing.RUnlock()
	return calls
}
