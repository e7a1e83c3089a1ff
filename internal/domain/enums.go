package domain

import "strings"

// Category classifies an idea. Assigned by enrichment.
type Category string

const (
	CategoryTodo        Category = "TODO"
	CategoryPlan        Category = "PLAN"
	CategoryInspiration Category = "INSPIRATION"
)

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	switch c {
	case CategoryTodo, CategoryPlan, CategoryInspiration:
		return true
	}
	return false
}

// ParseCategory maps an analysis label ("todo", "Plan", ...) onto the enum.
// Returns false for anything outside the three known values.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", false
	}
	return c, true
}

// EnrichmentStatus is the state of an idea's asynchronous enrichment.
type EnrichmentStatus string

const (
	EnrichmentStatusPending    EnrichmentStatus = "pending"
	EnrichmentStatusProcessing EnrichmentStatus = "processing"
	EnrichmentStatusCompleted  EnrichmentStatus = "completed"
	EnrichmentStatusFailed     EnrichmentStatus = "failed"
)

func (s EnrichmentStatus) String() string { return string(s) }

func (s EnrichmentStatus) IsValid() bool {
	switch s {
	case EnrichmentStatusPending, EnrichmentStatusProcessing, EnrichmentStatusCompleted, EnrichmentStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further automatic transition happens from s.
func (s EnrichmentStatus) IsTerminal() bool {
	return s == EnrichmentStatusCompleted || s == EnrichmentStatusFailed
}
