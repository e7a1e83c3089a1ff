package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// memStore is an in-memory stand-in for the ideas, tags and links tables with
// the same conditional-update semantics as the Postgres repositories.
type memStore struct {
	mu       sync.Mutex
	ideas    map[uuid.UUID]*domain.Idea
	tags     map[string]domain.Tag
	ideaTags map[[2]uuid.UUID]struct{}
	links    map[[2]uuid.UUID]domain.Link

	backlogErr  error
	completeErr error
	tagErr      map[string]error
	resetCalls  int

	// leaveFailures makes the next n writes out of processing fail with a
	// transport error before touching the row.
	leaveFailures int
	leaveCalls    int
}

var _ ideaRepo = &memStore{}

func newMemStore() *memStore {
	return &memStore{
		ideas:    make(map[uuid.UUID]*domain.Idea),
		tags:     make(map[string]domain.Tag),
		ideaTags: make(map[[2]uuid.UUID]struct{}),
		links:    make(map[[2]uuid.UUID]domain.Link),
		tagErr:   make(map[string]error),
	}
}

func (s *memStore) seed(t *testing.T, ownerID uuid.UUID, content string) domain.Idea {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := domain.NewIdea(ownerID, content, time.Now().Add(time.Duration(len(s.ideas))*time.Millisecond))
	s.ideas[i.ID] = &i
	return i
}

func (s *memStore) set(id uuid.UUID, status domain.EnrichmentStatus, attempts int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ideas[id].EnrichmentStatus = status
	s.ideas[id].EnrichmentAttempts = attempts
}

func (s *memStore) get(id uuid.UUID) domain.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.ideas[id]
}

func (s *memStore) tagNamesOf(id uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, tg := range s.tags {
		if _, ok := s.ideaTags[[2]uuid.UUID{id, tg.ID}]; ok {
			names = append(names, tg.Name)
		}
	}
	return names
}

func (s *memStore) counts() (tags, ideaTags, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tags), len(s.ideaTags), len(s.links)
}

func (s *memStore) linksFrom(id uuid.UUID) []domain.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Link
	for k, l := range s.links {
		if k[0] == id {
			out = append(out, l)
		}
	}
	return out
}

// --- ideaRepo ---

func (s *memStore) MarkProcessing(_ context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.ideas[id]
	if !ok || i.EnrichmentStatus != domain.EnrichmentStatusPending {
		return 0, fmt.Errorf("idea %s: %w", id, domain.ErrConflict)
	}
	now := time.Now()
	i.EnrichmentStatus = domain.EnrichmentStatusProcessing
	i.EnrichmentAttempts++
	i.LastAttemptAt = &now
	return i.EnrichmentAttempts, nil
}

func (s *memStore) CompleteEnrichment(_ context.Context, id uuid.UUID, title, summary string, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	i, ok := s.ideas[id]
	if !ok || i.EnrichmentStatus != domain.EnrichmentStatusProcessing {
		return fmt.Errorf("idea %s: %w", id, domain.ErrConflict)
	}
	i.Title, i.Summary, i.Category = &title, &summary, category
	i.EnrichmentStatus = domain.EnrichmentStatusCompleted
	return nil
}

func (s *memStore) leave(id uuid.UUID, to domain.EnrichmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveCalls++
	if s.leaveFailures > 0 {
		s.leaveFailures--
		return errors.New("connection reset by peer")
	}
	i, ok := s.ideas[id]
	if !ok || i.EnrichmentStatus != domain.EnrichmentStatusProcessing {
		return fmt.Errorf("idea %s: %w", id, domain.ErrConflict)
	}
	i.EnrichmentStatus = to
	return nil
}

func (s *memStore) ReturnToPending(_ context.Context, id uuid.UUID) error {
	return s.leave(id, domain.EnrichmentStatusPending)
}

func (s *memStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	return s.leave(id, domain.EnrichmentStatusFailed)
}

func (s *memStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ideas[id]
	return ok, nil
}

func (s *memStore) ListCompletedByOwner(_ context.Context, ownerID, excludeID uuid.UUID, limit int) ([]domain.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Idea{}
	for _, i := range s.ideas {
		if len(out) == limit {
			break
		}
		if i.OwnerID == ownerID && i.ID != excludeID && i.EnrichmentStatus == domain.EnrichmentStatusCompleted {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (s *memStore) ListBacklog(_ context.Context, maxAttempts, limit int) ([]domain.Idea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backlogErr != nil {
		return nil, s.backlogErr
	}
	var all []domain.Idea
	for _, i := range s.ideas {
		if i.EnrichmentStatus == domain.EnrichmentStatusPending && i.EnrichmentAttempts < maxAttempts {
			all = append(all, *i)
		}
	}
	// oldest first
	for a := 1; a < len(all); a++ {
		for b := a; b > 0 && all[b].CreatedAt.Before(all[b-1].CreatedAt); b-- {
			all[b], all[b-1] = all[b-1], all[b]
		}
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) ResetProcessing(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetCalls++
	n := 0
	for _, i := range s.ideas {
		if i.EnrichmentStatus == domain.EnrichmentStatusProcessing {
			i.EnrichmentStatus = domain.EnrichmentStatusPending
			n++
		}
	}
	return n, nil
}

// --- tagRepo ---

type memTags struct{ s *memStore }

var _ tagRepo = memTags{}

func (r memTags) GetByName(_ context.Context, name string) (*domain.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.tagErr[name]; err != nil {
		return nil, err
	}
	tg, ok := r.s.tags[name]
	if !ok {
		return nil, fmt.Errorf("tag %s: %w", name, domain.ErrNotFound)
	}
	return &tg, nil
}

func (r memTags) Create(_ context.Context, name, color string) (*domain.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tags[name]; ok {
		return nil, fmt.Errorf("tag %s: %w", name, domain.ErrAlreadyExists)
	}
	tg := domain.Tag{ID: uuid.New(), Name: name, Color: color, CreatedAt: time.Now()}
	r.s.tags[name] = tg
	return &tg, nil
}

func (r memTags) AttachToIdea(_ context.Context, ideaID, tagID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ideas[ideaID]; !ok {
		return fmt.Errorf("idea_tag %s: %w", ideaID, domain.ErrNotFound)
	}
	r.s.ideaTags[[2]uuid.UUID{ideaID, tagID}] = struct{}{}
	return nil
}

// --- linkRepo ---

type memLinks struct{ s *memStore }

var _ linkRepo = memLinks{}

func (r memLinks) Create(_ context.Context, l domain.Link) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ideas[l.ToIdeaID]; !ok {
		return false, fmt.Errorf("link: %w", domain.ErrNotFound)
	}
	if l.Strength <= 0 || l.Strength > 1 {
		return false, fmt.Errorf("link: %w", domain.ErrValidation)
	}
	key := [2]uuid.UUID{l.FromIdeaID, l.ToIdeaID}
	if _, ok := r.s.links[key]; ok {
		return false, nil
	}
	r.s.links[key] = l
	return true, nil
}
