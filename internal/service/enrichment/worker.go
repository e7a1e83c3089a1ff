package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/config"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// Policy holds the worker's timing and retry settings.
type Policy struct {
	DispatchInterval  time.Duration
	BacklogInterval   time.Duration
	BacklogBatchSize  int
	MaxRetries        int
	RetryDelay        time.Duration
	AnalysisTimeout   time.Duration
	ContextIdeasLimit int
	TagWorkers        int
}

// PolicyFromConfig converts the enrichment configuration section.
func PolicyFromConfig(cfg config.EnrichmentConfig) Policy {
	return Policy{
		DispatchInterval:  cfg.DispatchInterval,
		BacklogInterval:   cfg.BacklogInterval,
		BacklogBatchSize:  cfg.BacklogBatchSize,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		AnalysisTimeout:   cfg.AnalysisTimeout,
		ContextIdeasLimit: cfg.ContextIdeasLimit,
		TagWorkers:        cfg.TagWorkers,
	}
}

// Status is a point-in-time view of the worker for health reporting.
type Status struct {
	Running        bool
	QueueLength    int
	RetryScheduled int
}

// Worker owns the task queue and the two periodic loops: dispatch, which
// processes at most one task per tick, and backlog, which re-enqueues durable
// pending ideas. It is created once at startup and injected where needed.
type Worker struct {
	queue     *Queue
	processor *Processor
	scanner   *Scanner
	ideas     ideaRepo
	policy    Policy
	metrics   *Metrics
	log       *slog.Logger

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	retries  map[uuid.UUID]*time.Timer
	inFlight uuid.UUID

	// generation tells runs apart so a late halt cannot stop a newer run.
	generation uint64
}

// NewWorker wires the pipeline around the given repositories and analyzer.
func NewWorker(
	log *slog.Logger,
	ideas ideaRepo,
	tags tagRepo,
	links linkRepo,
	analyzer analyzer,
	policy Policy,
	metrics *Metrics,
) *Worker {
	log = log.With("service", "enrichment-worker")
	applier := NewApplier(log, ideas, tags, links, policy.TagWorkers, metrics)

	return &Worker{
		queue:     NewQueue(),
		processor: NewProcessor(log, ideas, analyzer, applier, policy, metrics),
		scanner:   NewScanner(log, ideas, policy),
		ideas:     ideas,
		policy:    policy,
		metrics:   metrics,
		log:       log,
		retries:   make(map[uuid.UUID]*time.Timer),
	}
}

// Start returns ideas stuck in processing to pending, runs one backlog scan
// and starts both loops. Calling Start on a running worker is a no-op.
// The loops stop when ctx is cancelled or Stop is called; either way the
// worker can be started again.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.log.InfoContext(ctx, "worker already running")
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.generation++
	generation := w.generation
	w.wg.Add(2)
	w.mu.Unlock()

	context.AfterFunc(runCtx, func() { w.halt(generation) })

	w.log.InfoContext(ctx, "starting worker",
		slog.Duration("dispatch_interval", w.policy.DispatchInterval),
		slog.Duration("backlog_interval", w.policy.BacklogInterval),
		slog.Int("max_retries", w.policy.MaxRetries),
	)

	// Nothing is in flight yet, so any processing row was left by a crash.
	if n, err := w.ideas.ResetProcessing(runCtx); err != nil {
		w.log.WarnContext(ctx, "reset processing ideas failed", slog.String("error", err.Error()))
	} else if n > 0 {
		w.log.InfoContext(ctx, "reset processing ideas", slog.Int("count", n))
	}

	w.scanBacklog(runCtx)

	go w.loop(runCtx, w.policy.DispatchInterval, func(ctx context.Context) { w.dispatchOnce(ctx) })
	go w.loop(runCtx, w.policy.BacklogInterval, w.scanBacklog)
}

// Stop halts both loops, cancels scheduled retries and waits for the
// in-flight attempt to finish. Ideas whose retry was cancelled stay pending
// and are recovered by the next backlog scan.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.stopTimersLocked()
	w.mu.Unlock()

	w.wg.Wait()
	w.log.Info("worker stopped")
}

// halt marks the worker stopped once the context given to Start is done.
// A halt left over from an earlier run is ignored.
func (w *Worker) halt(generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running || w.generation != generation {
		return
	}
	w.running = false
	w.stopTimersLocked()
	w.log.Info("worker context done, worker stopped")
}

func (w *Worker) stopTimersLocked() {
	for id, t := range w.retries {
		t.Stop()
		delete(w.retries, id)
	}
}

// Enqueue submits a task. It reports false when the idea is already waiting
// in the queue or for a retry. An idea that is in flight is accepted: the
// queued task runs after the current attempt, and is dropped then if the
// idea is no longer pending. Tasks may be enqueued before Start.
func (w *Worker) Enqueue(task domain.AnalysisTask) bool {
	w.mu.Lock()
	_, retrying := w.retries[task.IdeaID]
	w.mu.Unlock()
	if retrying {
		return false
	}

	added := w.queue.Enqueue(task)
	w.metrics.QueueLength.Set(float64(w.queue.Len()))
	if added {
		w.log.Debug("task enqueued",
			slog.String("idea_id", task.IdeaID.String()),
			slog.Int("queue_length", w.queue.Len()),
		)
	}
	return added
}

// QueueLength returns the number of tasks waiting for dispatch.
func (w *Worker) QueueLength() int {
	return w.queue.Len()
}

// IsRunning reports whether the loops are active.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Status returns a snapshot for health endpoints.
func (w *Worker) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		Running:        w.running,
		QueueLength:    w.queue.Len(),
		RetryScheduled: len(w.retries),
	}
}

func (w *Worker) loop(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// dispatchOnce processes at most one task. It reports whether a task was taken.
func (w *Worker) dispatchOnce(ctx context.Context) bool {
	// Dequeue and claim together so a backlog scan never sees the idea untracked.
	w.mu.Lock()
	task, ok := w.queue.DequeueOne()
	if ok {
		w.inFlight = task.IdeaID
	}
	w.mu.Unlock()
	if !ok {
		return false
	}
	w.metrics.QueueLength.Set(float64(w.queue.Len()))

	// Let a started attempt settle its status even if the worker is stopping.
	outcome := w.processor.Process(context.WithoutCancel(ctx), task)
	w.finish(task, outcome)
	return true
}

// finish releases the in-flight slot. Any follow-up timer is registered
// under the same lock so the idea is never untracked in between.
func (w *Worker) finish(task domain.AnalysisTask, outcome Outcome) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch outcome {
	case OutcomeRetry:
		w.scheduleRetryLocked(task)
	case OutcomeRetryUnsettled, OutcomeFailedUnsettled:
		w.scheduleSettleLocked(task, outcome)
	}
	w.inFlight = uuid.Nil
}

func (w *Worker) scheduleRetryLocked(task domain.AnalysisTask) {
	if !w.running {
		return
	}
	if _, ok := w.retries[task.IdeaID]; ok {
		return
	}

	w.retries[task.IdeaID] = time.AfterFunc(w.policy.RetryDelay, func() {
		w.mu.Lock()
		delete(w.retries, task.IdeaID)
		running := w.running
		w.mu.Unlock()

		if running {
			w.Enqueue(task)
		}
	})
	w.log.Info("retry scheduled",
		slog.String("idea_id", task.IdeaID.String()),
		slog.Duration("delay", w.policy.RetryDelay),
	)
}

// scheduleSettleLocked repeats the status write of an unsettled attempt
// after the retry delay. The idea stays tracked until the write succeeds,
// so neither the backlog scan nor a re-trigger races it.
func (w *Worker) scheduleSettleLocked(task domain.AnalysisTask, outcome Outcome) {
	if !w.running {
		return
	}
	if _, ok := w.retries[task.IdeaID]; ok {
		return
	}

	w.retries[task.IdeaID] = time.AfterFunc(w.policy.RetryDelay, func() { w.settle(task, outcome) })
	w.log.Info("status write rescheduled",
		slog.String("idea_id", task.IdeaID.String()),
		slog.String("outcome", string(outcome)),
		slog.Duration("delay", w.policy.RetryDelay),
	)
}

func (w *Worker) settle(task domain.AnalysisTask, outcome Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), w.policy.AnalysisTimeout)
	defer cancel()

	err := w.processor.Settle(ctx, task.IdeaID, outcome)

	w.mu.Lock()
	delete(w.retries, task.IdeaID)
	running := w.running
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		w.log.Error("settle idea status failed",
			slog.String("idea_id", task.IdeaID.String()),
			slog.String("error", err.Error()),
		)
		w.scheduleSettleLocked(task, outcome)
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	if err == nil && outcome == OutcomeRetryUnsettled && running {
		w.Enqueue(task)
	}
}

func (w *Worker) scanBacklog(ctx context.Context) {
	tasks, err := w.scanner.Scan(ctx)
	if err != nil {
		w.log.ErrorContext(ctx, "backlog scan failed", slog.String("error", err.Error()))
		return
	}

	added := 0
	for _, task := range tasks {
		if w.tracked(task.IdeaID) {
			continue
		}
		if w.Enqueue(task) {
			added++
			w.metrics.BacklogQueued.Inc()
		}
	}
	if added > 0 || len(tasks) > 0 {
		w.log.InfoContext(ctx, "backlog scanned", slog.Int("found", len(tasks)), slog.Int("enqueued", added))
	}
}

// tracked reports whether the idea is queued, awaiting retry or in flight.
func (w *Worker) tracked(id uuid.UUID) bool {
	if w.queue.Contains(id) {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, retrying := w.retries[id]
	return retrying || w.inFlight == id
}
