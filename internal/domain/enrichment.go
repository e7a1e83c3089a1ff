package domain

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisTask is one unit of enrichment work. It lives only in memory; the
// durable source of truth is the idea's EnrichmentStatus.
type AnalysisTask struct {
	IdeaID  uuid.UUID
	Content string
	OwnerID uuid.UUID
}

// TaskFromIdea builds the task that re-enriches an idea.
func TaskFromIdea(i Idea) AnalysisTask {
	return AnalysisTask{IdeaID: i.ID, Content: i.Content, OwnerID: i.OwnerID}
}

// EnrichmentResult is what the analysis service proposes for one idea.
type EnrichmentResult struct {
	Title        string
	Category     Category
	Tags         []ProposedTag
	RelatedIdeas []RelatedIdea
}

// ProposedTag is a tag suggested by analysis. Color may be empty.
type ProposedTag struct {
	Name  string
	Color string
}

// RelatedIdea is a suggested edge from the analysed idea to an existing one.
// IdeaID is kept as the raw string returned by the analysis service.
type RelatedIdea struct {
	IdeaID   string
	Reason   string
	Strength float64
}

// EnrichmentState is the status read model exposed to API clients.
type EnrichmentState struct {
	Status        EnrichmentStatus
	Attempts      int
	LastAttemptAt *time.Time
	HasResult     bool
	Result        *EnrichmentSummary
}

// EnrichmentSummary is the visible part of a completed enrichment.
type EnrichmentSummary struct {
	Title    string
	Category Category
}

// StateOf projects an idea onto its enrichment read model.
func StateOf(i Idea) EnrichmentState {
	st := EnrichmentState{
		Status:        i.EnrichmentStatus,
		Attempts:      i.EnrichmentAttempts,
		LastAttemptAt: i.LastAttemptAt,
		HasResult:     i.HasEnrichment(),
	}
	if st.HasResult {
		st.Result = &EnrichmentSummary{Title: *i.Title, Category: i.Category}
	}
	return st
}

// EnrichmentStats holds idea counts by enrichment status.
type EnrichmentStats struct {
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Total      int
}
