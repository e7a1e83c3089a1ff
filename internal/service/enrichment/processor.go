package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

const tracerName = "github.com/heartmarshall/ideaflow-backend/internal/service/enrichment"

// Processor drives one task through a single enrichment attempt:
// pending -> processing -> completed | pending (retry) | failed.
type Processor struct {
	ideas    ideaRepo
	analyzer analyzer
	applier  *Applier
	policy   Policy
	metrics  *Metrics
	tracer   trace.Tracer
	log      *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(log *slog.Logger, ideas ideaRepo, analyzer analyzer, applier *Applier, policy Policy, metrics *Metrics) *Processor {
	return &Processor{
		ideas:    ideas,
		analyzer: analyzer,
		applier:  applier,
		policy:   policy,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
		log:      log.With("component", "processor"),
	}
}

// Process runs one attempt for task and reports its outcome. OutcomeRetry
// means the idea is back in pending and the caller should re-enqueue it
// after the retry delay. The unsettled outcomes mean the idea is still in
// processing and the caller should Settle it later.
func (p *Processor) Process(ctx context.Context, task domain.AnalysisTask) Outcome {
	ctx, span := p.tracer.Start(ctx, "enrichment.Process",
		trace.WithAttributes(attribute.String("idea.id", task.IdeaID.String())),
	)
	defer span.End()

	outcome := p.process(ctx, span, task)
	span.SetAttributes(attribute.String("enrichment.outcome", string(outcome)))
	p.metrics.Attempts.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (p *Processor) process(ctx context.Context, span trace.Span, task domain.AnalysisTask) Outcome {
	log := p.log.With(slog.String("idea_id", task.IdeaID.String()))

	attempts, err := p.ideas.MarkProcessing(ctx, task.IdeaID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.DebugContext(ctx, "idea no longer pending, dropping task")
		} else {
			log.ErrorContext(ctx, "mark processing failed", slog.String("error", err.Error()))
			span.RecordError(err)
		}
		return OutcomeSkipped
	}
	span.SetAttributes(attribute.Int("enrichment.attempt", attempts))
	log.InfoContext(ctx, "processing idea", slog.Int("attempt", attempts))

	result, err := p.analyze(ctx, task)
	if err == nil {
		err = p.applier.Apply(ctx, task.IdeaID, result)
		if errors.Is(err, domain.ErrConflict) {
			log.InfoContext(ctx, "idea re-triggered during attempt, result discarded")
			return OutcomeSkipped
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return p.fail(ctx, log, task, attempts, err)
	}

	log.InfoContext(ctx, "idea enriched",
		slog.String("category", result.Category.String()),
		slog.Int("tags", len(result.Tags)),
	)
	return OutcomeCompleted
}

func (p *Processor) analyze(ctx context.Context, task domain.AnalysisTask) (*domain.EnrichmentResult, error) {
	prior, err := p.ideas.ListCompletedByOwner(ctx, task.OwnerID, task.IdeaID, p.policy.ContextIdeasLimit)
	if err != nil {
		return nil, err
	}

	actx, cancel := context.WithTimeout(ctx, p.policy.AnalysisTimeout)
	defer cancel()

	start := time.Now()
	result, err := p.analyzer.Analyze(actx, task.Content, prior, task.OwnerID)
	p.metrics.AnalysisSeconds.Observe(time.Since(start).Seconds())
	return result, err
}

func (p *Processor) fail(ctx context.Context, log *slog.Logger, task domain.AnalysisTask, attempts int, cause error) Outcome {
	kind := domain.ServiceErrorKindOf(cause)
	attrs := []any{
		slog.Int("attempt", attempts),
		slog.String("kind", string(kind)),
		slog.String("error", cause.Error()),
	}
	if kind == domain.ServiceErrorAuth {
		log.ErrorContext(ctx, "analysis rejected credentials", attrs...)
	} else {
		log.WarnContext(ctx, "enrichment attempt failed", attrs...)
	}

	if attempts < p.policy.MaxRetries {
		if err := p.ideas.ReturnToPending(ctx, task.IdeaID); err != nil {
			return p.unsettled(ctx, log, "return to pending", err, OutcomeRetryUnsettled)
		}
		return OutcomeRetry
	}

	if err := p.ideas.MarkFailed(ctx, task.IdeaID); err != nil {
		return p.unsettled(ctx, log, "mark failed", err, OutcomeFailedUnsettled)
	}
	log.WarnContext(ctx, "enrichment failed permanently", slog.Int("attempts", attempts))
	return OutcomeFailed
}

func (p *Processor) unsettled(ctx context.Context, log *slog.Logger, op string, err error, outcome Outcome) Outcome {
	if errors.Is(err, domain.ErrConflict) {
		log.InfoContext(ctx, "idea re-triggered during attempt, "+op+" skipped")
		return OutcomeSkipped
	}
	log.ErrorContext(ctx, op+" failed, idea left in processing", slog.String("error", err.Error()))
	return outcome
}

// Settle repeats the status write of an unsettled outcome: back to pending
// for OutcomeRetryUnsettled, failed for OutcomeFailedUnsettled. ErrConflict
// means the idea already left processing some other way.
func (p *Processor) Settle(ctx context.Context, ideaID uuid.UUID, outcome Outcome) error {
	switch outcome {
	case OutcomeRetryUnsettled:
		return p.ideas.ReturnToPending(ctx, ideaID)
	case OutcomeFailedUnsettled:
		return p.ideas.MarkFailed(ctx, ideaID)
	default:
		return fmt.Errorf("enrichment.Settle: outcome %q has nothing to settle", outcome)
	}
}
