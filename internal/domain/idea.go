package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTagColor is assigned to tags created without an explicit color.
const DefaultTagColor = "#3b82f6"

// Idea is a short free-text note owned by a user.
// Title, Summary and the final Category are filled in by enrichment.
type Idea struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Content            string
	Title              *string
	Summary            *string
	Category           Category
	EnrichmentStatus   EnrichmentStatus
	EnrichmentAttempts int
	LastAttemptAt      *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewIdea returns an idea ready for insertion: pending enrichment, zero attempts,
// default category.
func NewIdea(ownerID uuid.UUID, content string, now time.Time) Idea {
	return Idea{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		Content:          content,
		Category:         CategoryInspiration,
		EnrichmentStatus: EnrichmentStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// HasEnrichment reports whether the enrichment output has been written.
func (i Idea) HasEnrichment() bool {
	return i.Title != nil && i.Summary != nil
}

// Tag is a globally unique label. Name is the natural key.
type Tag struct {
	ID        uuid.UUID
	Name      string
	Color     string
	CreatedAt time.Time
}

// Link is a directed relationship between two ideas, unique per (from, to).
type Link struct {
	ID         uuid.UUID
	FromIdeaID uuid.UUID
	ToIdeaID   uuid.UUID
	Reason     string
	Strength   float64
	CreatedAt  time.Time
}
