package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-User-Id,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// RateLimitConfig limits idea writes per client. Zero disables the limit.
type RateLimitConfig struct {
	WritesPerMinute int           `yaml:"writes_per_minute" env:"RATE_LIMIT_WRITES_PER_MINUTE" env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// EnrichmentConfig holds the background enrichment worker policy.
type EnrichmentConfig struct {
	DispatchInterval  time.Duration `yaml:"dispatch_interval"   env:"ENRICH_DISPATCH_INTERVAL"   env-default:"10s"`
	BacklogInterval   time.Duration `yaml:"backlog_interval"    env:"ENRICH_BACKLOG_INTERVAL"    env-default:"60s"`
	BacklogBatchSize  int           `yaml:"backlog_batch_size"  env:"ENRICH_BACKLOG_BATCH_SIZE"  env-default:"10"`
	MaxRetries        int           `yaml:"max_retries"         env:"ENRICH_MAX_RETRIES"         env-default:"3"`
	RetryDelay        time.Duration `yaml:"retry_delay"         env:"ENRICH_RETRY_DELAY"         env-default:"5s"`
	AnalysisTimeout   time.Duration `yaml:"analysis_timeout"    env:"ENRICH_ANALYSIS_TIMEOUT"    env-default:"30s"`
	ContextIdeasLimit int           `yaml:"context_ideas_limit" env:"ENRICH_CONTEXT_IDEAS_LIMIT" env-default:"50"`
	TagWorkers        int           `yaml:"tag_workers"         env:"ENRICH_TAG_WORKERS"         env-default:"4"`
}

// AnalysisConfig holds settings for the external analysis (LLM) service.
// An empty APIKey puts the client in heuristic-only mode.
type AnalysisConfig struct {
	APIKey    string `yaml:"api_key"    env:"ANALYSIS_API_KEY"`
	BaseURL   string `yaml:"base_url"   env:"ANALYSIS_BASE_URL"`
	Model     string `yaml:"model"      env:"ANALYSIS_MODEL"      env-default:"claude-sonnet-4-5"`
	MaxTokens int64  `yaml:"max_tokens" env:"ANALYSIS_MAX_TOKENS" env-default:"1000"`

	BreakerMaxRequests      uint32        `yaml:"breaker_max_requests"      env:"ANALYSIS_BREAKER_MAX_REQUESTS"      env-default:"1"`
	BreakerInterval         time.Duration `yaml:"breaker_interval"          env:"ANALYSIS_BREAKER_INTERVAL"          env-default:"60s"`
	BreakerTimeout          time.Duration `yaml:"breaker_timeout"           env:"ANALYSIS_BREAKER_TIMEOUT"           env-default:"30s"`
	BreakerMinRequests      uint32        `yaml:"breaker_min_requests"      env:"ANALYSIS_BREAKER_MIN_REQUESTS"      env-default:"5"`
	BreakerFailureThreshold float64       `yaml:"breaker_failure_threshold" env:"ANALYSIS_BREAKER_FAILURE_THRESHOLD" env-default:"0.8"`
}
