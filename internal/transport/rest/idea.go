package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/heartmarshall/ideaflow-backend/internal/domain"
	"github.com/heartmarshall/ideaflow-backend/internal/service/idea"
)

const maxBodyBytes = 64 << 10

type ideaService interface {
	CreateIdea(ctx context.Context, input idea.CreateIdeaInput) (*domain.Idea, error)
	GetEnrichment(ctx context.Context, input idea.IdeaRefInput) (*idea.EnrichmentView, error)
	RetriggerEnrichment(ctx context.Context, input idea.IdeaRefInput) (*domain.EnrichmentState, error)
}

// IdeaHandler serves the idea endpoints.
type IdeaHandler struct {
	svc ideaService
	log *slog.Logger
}

// NewIdeaHandler creates an IdeaHandler.
func NewIdeaHandler(svc ideaService, logger *slog.Logger) *IdeaHandler {
	return &IdeaHandler{svc: svc, log: logger.With("handler", "idea")}
}

type createIdeaRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type ideaResponse struct {
	ID                 string    `json:"id"`
	Content            string    `json:"content"`
	Category           string    `json:"category"`
	EnrichmentStatus   string    `json:"enrichmentStatus"`
	EnrichmentAttempts int       `json:"enrichmentAttempts"`
	CreatedAt          time.Time `json:"createdAt"`
}

type enrichmentResponse struct {
	IdeaID        string                    `json:"ideaId"`
	Status        string                    `json:"status"`
	Attempts      int                       `json:"attempts"`
	LastAttemptAt *time.Time                `json:"lastAttemptAt"`
	HasResult     bool                      `json:"hasResult"`
	Result        *enrichmentResultResponse `json:"result,omitempty"`
	Tags          []tagResponse             `json:"tags,omitempty"`
	Links         []linkResponse            `json:"links,omitempty"`
}

type enrichmentResultResponse struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type linkResponse struct {
	ToIdeaID string  `json:"toIdeaId"`
	Reason   string  `json:"reason"`
	Strength float64 `json:"strength"`
}

// Create handles POST /ideas. It answers as soon as the idea is stored;
// enrichment runs in the background.
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIdeaRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRequest(req); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	created, err := h.svc.CreateIdea(r.Context(), idea.CreateIdeaInput{Content: req.Content})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, ideaResponse{
		ID:                 created.ID.String(),
		Content:            created.Content,
		Category:           created.Category.String(),
		EnrichmentStatus:   created.EnrichmentStatus.String(),
		EnrichmentAttempts: created.EnrichmentAttempts,
		CreatedAt:          created.CreatedAt,
	})
}

// GetEnrichment handles GET /ideas/{id}/enrichment.
func (h *IdeaHandler) GetEnrichment(w http.ResponseWriter, r *http.Request) {
	id, err := ideaIDParam(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	view, err := h.svc.GetEnrichment(r.Context(), idea.IdeaRefInput{IdeaID: id})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := toEnrichmentResponse(id, view.State)
	for _, t := range view.Tags {
		resp.Tags = append(resp.Tags, tagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color})
	}
	for _, l := range view.Links {
		resp.Links = append(resp.Links, linkResponse{ToIdeaID: l.ToIdeaID.String(), Reason: l.Reason, Strength: l.Strength})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Retrigger handles POST /ideas/{id}/enrichment. The idea goes back to
// pending and the response is 202 with the reset state.
func (h *IdeaHandler) Retrigger(w http.ResponseWriter, r *http.Request) {
	id, err := ideaIDParam(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	state, err := h.svc.RetriggerEnrichment(r.Context(), idea.IdeaRefInput{IdeaID: id})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toEnrichmentResponse(id, *state))
}

func ideaIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a UUID")
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return errors.New("empty request body")
		}
		return errors.New("invalid request body")
	}
	return nil
}

func toEnrichmentResponse(id uuid.UUID, st domain.EnrichmentState) enrichmentResponse {
	resp := enrichmentResponse{
		IdeaID:        id.String(),
		Status:        st.Status.String(),
		Attempts:      st.Attempts,
		LastAttemptAt: st.LastAttemptAt,
		HasResult:     st.HasResult,
	}
	if st.Result != nil {
		resp.Result = &enrichmentResultResponse{
			Title:    st.Result.Title,
			Category: st.Result.Category.String(),
		}
	}
	return resp
}
