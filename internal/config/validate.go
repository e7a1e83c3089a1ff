package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if err := c.Enrichment.validate(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}

	if err := c.Analysis.validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	if c.RateLimit.WritesPerMinute < 0 {
		return fmt.Errorf("rate_limit.writes_per_minute must be >= 0 (got %d)", c.RateLimit.WritesPerMinute)
	}
	if c.RateLimit.WritesPerMinute > 0 && c.RateLimit.CleanupInterval <= 0 {
		return fmt.Errorf("rate_limit.cleanup_interval must be > 0 (got %v)", c.RateLimit.CleanupInterval)
	}

	return nil
}

func (e *EnrichmentConfig) validate() error {
	if e.DispatchInterval <= 0 {
		return fmt.Errorf("dispatch_interval must be > 0 (got %v)", e.DispatchInterval)
	}
	if e.BacklogInterval <= 0 {
		return fmt.Errorf("backlog_interval must be > 0 (got %v)", e.BacklogInterval)
	}
	if e.BacklogBatchSize <= 0 {
		return fmt.Errorf("backlog_batch_size must be > 0 (got %d)", e.BacklogBatchSize)
	}
	if e.MaxRetries <= 0 {
		return fmt.Errorf("max_retries must be > 0 (got %d)", e.MaxRetries)
	}
	if e.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must be >= 0 (got %v)", e.RetryDelay)
	}
	if e.AnalysisTimeout <= 0 {
		return fmt.Errorf("analysis_timeout must be > 0 (got %v)", e.AnalysisTimeout)
	}
	if e.ContextIdeasLimit < 0 {
		return fmt.Errorf("context_ideas_limit must be >= 0 (got %d)", e.ContextIdeasLimit)
	}
	if e.TagWorkers <= 0 {
		return fmt.Errorf("tag_workers must be > 0 (got %d)", e.TagWorkers)
	}
	return nil
}

func (a *AnalysisConfig) validate() error {
	if a.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be > 0 (got %d)", a.MaxTokens)
	}
	if a.BreakerFailureThreshold <= 0 || a.BreakerFailureThreshold > 1 {
		return fmt.Errorf("breaker_failure_threshold must be in (0,1] (got %v)", a.BreakerFailureThreshold)
	}
	return nil
}
