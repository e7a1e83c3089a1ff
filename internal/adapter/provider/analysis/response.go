package analysis

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

const (
	defaultTitle      = "新笔记"
	defaultTitleRunes = 10
)

var errNoJSON = errors.New("no JSON object found in response")

// apiResult mirrors the JSON object the model is asked to return.
type apiResult struct {
	Title        string       `json:"title"`
	Category     string       `json:"category"`
	Tags         []apiTag     `json:"tags"`
	RelatedIdeas []apiRelated `json:"relatedIdeas"`
}

type apiTag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type apiRelated struct {
	IdeaID   string  `json:"ideaId"`
	Reason   string  `json:"reason"`
	Strength float64 `json:"strength"`
}

// parseResult turns raw model output into an EnrichmentResult.
// Any error means the caller should fall back to DefaultResult.
func parseResult(text string) (*domain.EnrichmentResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	var r apiResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	category, ok := domain.ParseCategory(r.Category)
	if !ok {
		return nil, fmt.Errorf("invalid category %q", r.Category)
	}

	result := &domain.EnrichmentResult{
		Title:    strings.TrimSpace(r.Title),
		Category: category,
	}
	for _, t := range r.Tags {
		result.Tags = append(result.Tags, domain.ProposedTag{Name: t.Name, Color: t.Color})
	}
	if category != domain.CategoryTodo {
		for _, rel := range r.RelatedIdeas {
			result.RelatedIdeas = append(result.RelatedIdeas, domain.RelatedIdea{
				IdeaID:   rel.IdeaID,
				Reason:   rel.Reason,
				Strength: rel.Strength,
			})
		}
	}
	if result.Title == "" {
		result.Title = fallbackTitle("")
	}
	return result, nil
}

// extractJSON returns the text between the first '{' and the last '}'.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

var (
	todoKeywords = []string{"todo", "待办", "任务", "需要", "应该", "必须"}
	planKeywords = []string{"计划", "规划", "项目", "目标"}
)

// DefaultResult is the heuristic analysis used when the model is unavailable
// by configuration or returns something unparseable: a keyword category
// guess, a truncated title, two generic tags and no relationships.
func DefaultResult(content string) *domain.EnrichmentResult {
	return &domain.EnrichmentResult{
		Title:    fallbackTitle(content),
		Category: guessCategory(content),
		Tags: []domain.ProposedTag{
			{Name: "笔记", Color: "#3b82f6"},
			{Name: "灵感", Color: "#8b5cf6"},
		},
	}
}

func guessCategory(content string) domain.Category {
	lower := strings.ToLower(content)
	if containsAny(lower, todoKeywords) {
		return domain.CategoryTodo
	}
	if containsAny(lower, planKeywords) {
		return domain.CategoryPlan
	}
	return domain.CategoryInspiration
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func fallbackTitle(content string) string {
	title := content
	if utf8.RuneCountInString(title) > defaultTitleRunes {
		title = string([]rune(title)[:defaultTitleRunes])
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle
	}
	return title
}
