// Package analysis talks to the external language model that proposes a
// title, category, tags and related ideas for a freshly written idea.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/heartmarshall/ideaflow-backend/internal/config"
	"github.com/heartmarshall/ideaflow-backend/internal/domain"
)

const systemPrompt = "You are a careful note analysis assistant. Follow the requested output format exactly."

// Client calls the Messages API through a circuit breaker.
// With no API key configured every call returns DefaultResult.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	enabled   bool
	breaker   *gobreaker.CircuitBreaker
	log       *slog.Logger
}

// NewClient creates a Client from the analysis configuration.
// Retries are owned by the enrichment worker, so SDK-level retries are off.
func NewClient(cfg config.AnalysisConfig, logger *slog.Logger) *Client {
	log := logger.With("adapter", "analysis")

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	if cfg.APIKey == "" {
		log.Warn("analysis api key not configured, using heuristic analysis only")
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		enabled:   cfg.APIKey != "",
		breaker:   newBreaker(cfg, log),
		log:       log,
	}
}

func newBreaker(cfg config.AnalysisConfig, log *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analysis",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the remote service.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Analyze asks the model to enrich content, using prior ideas of the same
// owner as candidates for relationships.
//
// Transport failures, timeouts, non-2xx answers and an open breaker are
// returned as *domain.ServiceError. A successful answer that cannot be
// parsed degrades to DefaultResult(content) and is never an error.
func (c *Client) Analyze(ctx context.Context, content string, prior []domain.Idea, ownerID uuid.UUID) (*domain.EnrichmentResult, error) {
	if !c.enabled {
		return DefaultResult(content), nil
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, content, prior)
	})
	if err != nil {
		return nil, c.mapError(ctx, err, ownerID)
	}

	text := out.(string)
	result, perr := parseResult(text)
	if perr != nil {
		c.log.WarnContext(ctx, "analysis response malformed, using heuristic result",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", perr.Error()),
		)
		return DefaultResult(content), nil
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, content string, prior []domain.Idea) (string, error) {
	start := time.Now()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0.3),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(content, prior))),
		},
	})
	if err != nil {
		return "", err
	}

	c.log.DebugContext(ctx, "analysis call finished",
		slog.Duration("took", time.Since(start)),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
	)

	// An empty body is a malformed answer, not a transport failure.
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

func (c *Client) mapError(ctx context.Context, err error, ownerID uuid.UUID) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ServiceError{Kind: domain.ServiceErrorTransient, Err: fmt.Errorf("circuit open: %w", err)}
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		kind := domain.ServiceErrorTransient
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			kind = domain.ServiceErrorAuth
			c.log.ErrorContext(ctx, "analysis service rejected credentials, check ANALYSIS_API_KEY",
				slog.String("owner_id", ownerID.String()),
				slog.Int("status", apiErr.StatusCode),
			)
		}
		return &domain.ServiceError{Kind: kind, StatusCode: apiErr.StatusCode, Err: err}
	}

	return &domain.ServiceError{Kind: domain.ServiceErrorTransient, Err: err}
}
