package enrichment

import (
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Queue is an unbounded in-memory FIFO of analysis tasks. An idea is held at
// most once: enqueuing an idea that is already waiting is a successful no-op.
// Contents are lost on restart; the backlog scanner rebuilds them.
type Queue struct {
	mu     sync.Mutex
	items  []domain.AnalysisTask
	queued map[uuid.UUID]struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{queued: make(map[uuid.UUID]struct{})}
}

// Enqueue appends task and reports whether it was added.
func (q *Queue) Enqueue(task domain.AnalysisTask) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.queued[task.IdeaID]; ok {
		return false
	}
	q.items = append(q.items, task)
	q.queued[task.IdeaID] = struct{}{}
	return true
}

// DequeueOne removes and returns the oldest task.
func (q *Queue) DequeueOne() (domain.AnalysisTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return domain.AnalysisTask{}, false
	}
	task := q.items[0]
	q.items[0] = domain.AnalysisTask{}
	q.items = q.items[1:]
	delete(q.queued, task.IdeaID)
	return task, true
}

// Contains reports whether the idea is waiting in the queue.
func (q *Queue) Contains(ideaID uuid.UUID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.queued[ideaID]
	return ok
}

// Len returns the number of waiting tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
