package analysis

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// buildPrompt renders the user message for one idea. Prior ideas are the only
// allowed targets for relationships.
func buildPrompt(content string, prior []domain.Idea) string {
	var b strings.Builder
	for _, p := range prior {
		summary := "none"
		if p.Summary != nil && *p.Summary != "" {
			summary = *p.Summary
		}
		fmt.Fprintf(&b, "ID: %s\nContent: %s\nSummary: %s\nCategory: %s\n---\n",
			p.ID, p.Content, summary, strings.ToLower(p.Category.String()))
	}
	existing := b.String()
	if existing == "" {
		existing = "(no existing notes)\n"
	}

	return fmt.Sprintf(`Analyze the new note below and answer with a JSON object only.

New note:
"""
%s
"""

The user's existing notes:
%s
Requirements:
1. A title of at most 10 characters, in the language of the note.
2. Category, exactly one of:
   - todo: a concrete task or action item
   - plan: a new plan or project idea
   - inspiration: a thought or idea under some plan
3. 2-4 short keyword tags, each with a suggested hex color.
4. Only when the category is not todo: up to 3 of the existing notes most related
   to the new one, with a reason and a strength between 0.1 and 1.0.
   Related notes MUST be chosen from the list above, referenced by their ID.

Output format:
{
  "title": "title",
  "category": "todo|plan|inspiration",
  "tags": [{"name": "tag", "color": "#rrggbb"}],
  "relatedIdeas": [{"ideaId": "note id", "reason": "why", "strength": 0.8}]
}

Output ONLY the JSON, no markdown, no explanations.`, content, existing)
}
