package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

const defaultLinkStrength = 0.5

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Applier projects an EnrichmentResult onto durable state. Tag and link
// writes are idempotent and best-effort: their failures are logged and never
// undo the completed status.
type Applier struct {
	ideas      ideaRepo
	tags       tagRepo
	links      linkRepo
	tagWorkers int
	metrics    *Metrics
	log        *slog.Logger
}

// NewApplier creates an Applier. tagWorkers bounds concurrent tag writes.
func NewApplier(log *slog.Logger, ideas ideaRepo, tags tagRepo, links linkRepo, tagWorkers int, metrics *Metrics) *Applier {
	if tagWorkers <= 0 {
		tagWorkers = 1
	}
	return &Applier{
		ideas:      ideas,
		tags:       tags,
		links:      links,
		tagWorkers: tagWorkers,
		metrics:    metrics,
		log:        log.With("component", "applier"),
	}
}

// Apply marks the idea completed with the result's title and category, then
// materializes tags and links. It returns an error only when the completion
// itself was not written; domain.ErrConflict means the idea left processing
// while the attempt was running and nothing else was touched.
func (a *Applier) Apply(ctx context.Context, ideaID uuid.UUID, result *domain.EnrichmentResult) error {
	category := result.Category
	if !category.IsValid() {
		category = domain.CategoryInspiration
	}

	// Summary mirrors the title.
	if err := a.ideas.CompleteEnrichment(ctx, ideaID, result.Title, result.Title, category); err != nil {
		return fmt.Errorf("enrichment.Apply: %w", err)
	}

	a.applyTags(ctx, ideaID, result.Tags)

	if category != domain.CategoryTodo {
		a.applyLinks(ctx, ideaID, result.RelatedIdeas)
	}
	return nil
}

func (a *Applier) applyTags(ctx context.Context, ideaID uuid.UUID, proposed []domain.ProposedTag) {
	tags := normalizeTags(proposed)
	if len(tags) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(a.tagWorkers)
	for _, t := range tags {
		g.Go(func() error {
			if err := a.attachTag(ctx, ideaID, t); err != nil {
				a.log.WarnContext(ctx, "attach tag failed",
					slog.String("idea_id", ideaID.String()),
					slog.String("tag", t.Name),
					slog.String("error", err.Error()),
				)
				return nil
			}
			a.metrics.TagsAttached.Inc()
			return nil
		})
	}
	_ = g.Wait()
}

func (a *Applier) attachTag(ctx context.Context, ideaID uuid.UUID, t domain.ProposedTag) error {
	tag, err := a.tags.GetByName(ctx, t.Name)
	if errors.Is(err, domain.ErrNotFound) {
		tag, err = a.tags.Create(ctx, t.Name, t.Color)
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Lost a race with a concurrent applier.
			tag, err = a.tags.GetByName(ctx, t.Name)
		}
	}
	if err != nil {
		return err
	}
	return a.tags.AttachToIdea(ctx, ideaID, tag.ID)
}

func (a *Applier) applyLinks(ctx context.Context, ideaID uuid.UUID, related []domain.RelatedIdea) {
	seen := make(map[uuid.UUID]struct{}, len(related))

	for _, rel := range related {
		targetID, err := uuid.Parse(strings.TrimSpace(rel.IdeaID))
		if err != nil || targetID == ideaID {
			a.log.DebugContext(ctx, "skip related idea", slog.String("idea_id", ideaID.String()), slog.String("target", rel.IdeaID))
			continue
		}
		if _, dup := seen[targetID]; dup {
			continue
		}
		seen[targetID] = struct{}{}

		exists, err := a.ideas.Exists(ctx, targetID)
		if err != nil {
			a.log.WarnContext(ctx, "check related idea failed",
				slog.String("idea_id", ideaID.String()),
				slog.String("target", targetID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !exists {
			continue
		}

		created, err := a.links.Create(ctx, domain.Link{
			FromIdeaID: ideaID,
			ToIdeaID:   targetID,
			Reason:     strings.TrimSpace(rel.Reason),
			Strength:   clampStrength(rel.Strength),
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Target deleted between the check and the insert.
		case err != nil:
			a.log.WarnContext(ctx, "create link failed",
				slog.String("idea_id", ideaID.String()),
				slog.String("target", targetID.String()),
				slog.String("error", err.Error()),
			)
		case created:
			a.metrics.LinksCreated.Inc()
		}
	}
}

// normalizeTags trims names, drops blanks and duplicates, and replaces
// anything that is not a #rrggbb color with the default tag color.
func normalizeTags(proposed []domain.ProposedTag) []domain.ProposedTag {
	out := make([]domain.ProposedTag, 0, len(proposed))
	seen := make(map[string]struct{}, len(proposed))
	for _, t := range proposed {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		color := strings.TrimSpace(t.Color)
		if !hexColor.MatchString(color) {
			color = domain.DefaultTagColor
		}
		out = append(out, domain.ProposedTag{Name: name, Color: color})
	}
	return out
}

func clampStrength(s float64) float64 {
	switch {
	case math.IsNaN(s) || s <= 0:
		return defaultLinkStrength
	case s > 1:
		return 1
	default:
		return s
	}
}
