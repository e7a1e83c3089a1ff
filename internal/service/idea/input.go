package idea

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

// CreateIdeaInput holds the parameters for creating an idea.
type CreateIdeaInput struct {
	Content string
}

// Validate checks all fields and collects all errors.
func (i CreateIdeaInput) Validate() error {
	content := strings.TrimSpace(i.Content)
	if content == "" {
		return domain.NewValidationError("content", "required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return domain.NewValidationError("content", fmt.Sprintf("max %d characters", MaxContentLength))
	}
	return nil
}

// IdeaRefInput identifies one idea of the current user.
type IdeaRefInput struct {
	IdeaID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i IdeaRefInput) Validate() error {
	if i.IdeaID == uuid.Nil {
		return domain.NewValidationError("idea_id", "required")
	}
	return nil
}
