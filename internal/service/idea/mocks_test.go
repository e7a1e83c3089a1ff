package idea

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// ideaRepoMock
// ---------------------------------------------------------------------------

var _ ideaRepo = &ideaRepoMock{}

type ideaRepoMock struct {
	CreateFunc          func(ctx context.Context, idea *domain.Idea) (*domain.Idea, error)
	GetByOwnerFunc      func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Idea, error)
	ResetEnrichmentFunc func(ctx context.Context, id uuid.UUID) error

	calls struct {
		Create []struct {
			Ctx  context.Context
			Idea *domain.Idea
		}
		GetByOwner []struct {
			Ctx     context.Context
			OwnerID uuid.UUID
			ID      uuid.UUID
		}
		ResetEnrichment []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockCreate          sync.RWMutex
	lockGetByOwner      sync.RWMutex
	lockResetEnrichment sync.RWMutex
}

func (mock *ideaRepoMock) Create(ctx context.Context, idea *domain.Idea) (*domain.Idea, error) {
	if mock.CreateFunc == nil {
		panic("ideaRepoMock.CreateFunc: method is nil but ideaRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct {
		Ctx  context.Context
		Idea *domain.Idea
	}{ctx, idea})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, idea)
}

func (mock *ideaRepoMock) CreateCalls() []struct {
	Ctx  context.Context
	Idea *domain.Idea
} {
	mock.lockCreate.RLock()
	defer mock.lockCreate.RUnlock()
	return mock.calls.Create
}

func (mock *ideaRepoMock) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Idea, error) {
	if mock.GetByOwnerFunc == nil {
		panic("ideaRepoMock.GetByOwnerFunc: method is nil but ideaRepo.GetByOwner was just called")
	}
	mock.lockGetByOwner.Lock()
	mock.calls.GetByOwner = append(mock.calls.GetByOwner, struct {
		Ctx     context.Context
		OwnerID uuid.UUID
		ID      uuid.UUID
	}{ctx, ownerID, id})
	mock.lockGetByOwner.Unlock()
	return mock.GetByOwnerFunc(ctx, ownerID, id)
}

func (mock *ideaRepoMock) GetByOwnerCalls() []struct {
	Ctx     context.Context
	OwnerID uuid.UUID
	ID      uuid.UUID
} {
	mock.lockGetByOwner.RLock()
	defer mock.lockGetByOwner.RUnlock()
	return mock.calls.GetByOwner
}

func (mock *ideaRepoMock) ResetEnrichment(ctx context.Context, id uuid.UUID) error {
	if mock.ResetEnrichmentFunc == nil {
		panic("ideaRepoMock.ResetEnrichmentFunc: method is nil but ideaRepo.ResetEnrichment was just called")
	}
	mock.lockResetEnrichment.Lock()
	mock.calls.ResetEnrichment = append(mock.calls.ResetEnrichment, struct {
		Ctx context.Context
		ID  uuid.UUID
	}{ctx, id})
	mock.lockResetEnrichment.Unlock()
	return mock.ResetEnrichmentFunc(ctx, id)
}

func (mock *ideaRepoMock) ResetEnrichmentCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockResetEnrichment.RLock()
	defer mock.lockResetEnrichment.RUnlock()
	return mock.calls.ResetEnrichment
}

// ---------------------------------------------------------------------------
// tagRepoMock
// ---------------------------------------------------------------------------

var _ tagRepo = &tagRepoMock{}

type tagRepoMock struct {
	ListByIdeaFunc func(ctx context.Context, ideaID uuid.UUID) ([]domain.Tag, error)
}

func (mock *tagRepoMock) ListByIdea(ctx context.Context, ideaID uuid.UUID) ([]domain.Tag, error) {
	if mock.ListByIdeaFunc == nil {
		panic("tagRepoMock.ListByIdeaFunc: method is nil but tagRepo.ListByIdea was just called")
	}
	return mock.ListByIdeaFunc(ctx, ideaID)
}

// ---------------------------------------------------------------------------
// linkRepoMock
// ---------------------------------------------------------------------------

var _ linkRepo = &linkRepoMock{}

type linkRepoMock struct {
	ListFromFunc func(ctx context.Context, fromID uuid.UUID) ([]domain.Link, error)
}

func (mock *linkRepoMock) ListFrom(ctx context.Context, fromID uuid.UUID) ([]domain.Link, error) {
	if mock.ListFromFunc == nil {
		panic("linkRepoMock.ListFromFunc: method is nil but linkRepo.ListFrom was just called")
	}
	return mock.ListFromFunc(ctx, fromID)
}

// ---------------------------------------------------------------------------
// txManagerMock
// ---------------------------------------------------------------------------

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	return mock.RunInTxFunc(ctx, fn)
}

// ---------------------------------------------------------------------------
// enqueuerMock
// ---------------------------------------------------------------------------

var _ enqueuer = &enqueuerMock{}

type enqueuerMock struct {
	EnqueueFunc func(task domain.AnalysisTask) bool

	calls struct {
		Enqueue []struct {
			Task domain.AnalysisTask
		}
	}
	lockEnqueue sync.RWMutex
}

func (mock *enqueuerMock) Enqueue(task domain.AnalysisTask) bool {
	if mock.EnqueueFunc == nil {
		panic("enqueuerMock.EnqueueFunc: method is nil but enqueuer.Enqueue was just called")
	}
	mock.lockEnqueue.Lock()
	mock.calls.Enqueue = append(mock.calls.Enqueue, struct {
		Task domain.AnalysisTask
	}{task})
	mock.lockEnqueue.Unlock()
	return mock.EnqueueFunc(task)
}

func (mock *enqueuerMock) EnqueueCalls() []struct {
	Task domain.AnalysisTask
} {
	mock.lockEnqueue.RLock()
	defer mock.lockEnqueue.RUnlock()
	return mock.calls.Enqueue
}
