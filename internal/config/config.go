package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/planner-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	KnowledgeBackendSQLite   = "sqlite"
	KnowledgeBackendPostgres = "postgres"
	KnowledgeBackendMemory   = "memory"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerCfg ServerConfig `envPrefix:"SERVER_"`

	// Planner pipeline configuration
	PlannerCfg PlannerConfig `envPrefix:"PLANNER_"`

	// External service configurations
	LLMConnectorCfg       LLMConnectorConfig       `envPrefix:"LLM_"`
	EmbeddingConnectorCfg EmbeddingConnectorConfig `envPrefix:"EMBEDDING_"`

	// Knowledge base configuration
	KnowledgeBaseCfg KnowledgeBaseConfig `envPrefix:"KB_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type ServerConfig struct {
	Addr         string        `env:"ADDR,notEmpty"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5m"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	// HandlerTimeout bounds synchronous handlers; streaming routes are exempt.
	HandlerTimeout time.Duration `env:"HANDLER_TIMEOUT" envDefault:"2m"`
}

// PlannerConfig carries the token budget model shared by the preprocessing pipeline.
type PlannerConfig struct {
	Model                  string  `env:"MODEL" envDefault:"gpt-4"`
	ModelMaxTokens         int     `env:"MODEL_MAX_TOKENS" envDefault:"8000"`
	SafetyBufferTokens     int     `env:"SAFETY_BUFFER_TOKENS" envDefault:"200"`
	OverlapTokens          int     `env:"OVERLAP_TOKENS" envDefault:"100"`
	TopK                   int     `env:"TOP_K" envDefault:"5"`
	MaxParallelAttachments int     `env:"MAX_PARALLEL_ATTACHMENTS" envDefault:"4"`
	Temperature            float64 `env:"TEMPERATURE" envDefault:"0.7"`
	SummaryMaxOutputTokens int     `env:"SUMMARY_MAX_OUTPUT_TOKENS" envDefault:"1024"`
}

type LLMConnectorConfig struct {
	HTTPClientConfig
	ResponsesEndpoint string               `env:"RESPONSES_ENDPOINT" envDefault:"/responses"`
	Retry             pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type EmbeddingConnectorConfig struct {
	HTTPClientConfig
	Endpoint             string               `env:"ENDPOINT" envDefault:"/embeddings"`
	Model                string               `env:"MODEL" envDefault:"text-embedding-3-small"`
	BatchSize            int                  `env:"BATCH_SIZE" envDefault:"64"`
	CacheTTL             time.Duration        `env:"CACHE_TTL" envDefault:"30m"`
	CacheCleanupInterval time.Duration        `env:"CACHE_CLEANUP_INTERVAL" envDefault:"10m"`
	Retry                pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	MaxIdleConnsPerHost   int           `env:"MAX_IDLE_CONNS_PER_HOST" envDefault:"16"`
	Token                 string        `env:"TOKEN"`
	// AuthHeader carries the raw token instead of "Authorization: Bearer", e.g. "api-key".
	AuthHeader string `env:"AUTH_HEADER"`
	Url        string `env:"SERVICE_URL" envDefault:"https://api.openai.com/v1"`
}

// KnowledgeBaseConfig selects the durable chunk store backend.
type KnowledgeBaseConfig struct {
	Backend string `env:"BACKEND" envDefault:"sqlite"`
	// Path is the sqlite file location; the store is bootstrapped empty when missing.
	Path string `env:"PATH" envDefault:"data/knowledge.db"`

	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
	MaxTotalSize  int64 `env:"MAX_TOTAL_SIZE" envDefault:"26214400"`  // 25 MiB
	MaxFileCount  int   `env:"MAX_FILE_COUNT" envDefault:"16"`        // Max 16 files
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	// Validate configuration
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate planner configuration
	p := cfg.PlannerCfg
	if p.Model == "" {
		errors = append(errors, "PLANNER_MODEL must not be empty")
	}

	if p.ModelMaxTokens <= p.SafetyBufferTokens {
		errors = append(errors, fmt.Sprintf("PLANNER_MODEL_MAX_TOKENS (%d) must exceed PLANNER_SAFETY_BUFFER_TOKENS (%d)", p.ModelMaxTokens, p.SafetyBufferTokens))
	}

	if p.SafetyBufferTokens < 0 {
		errors = append(errors, fmt.Sprintf("PLANNER_SAFETY_BUFFER_TOKENS must not be negative, got %d", p.SafetyBufferTokens))
	}

	if p.OverlapTokens < 0 {
		errors = append(errors, fmt.Sprintf("PLANNER_OVERLAP_TOKENS must not be negative, got %d", p.OverlapTokens))
	}

	if p.TopK < 1 || p.TopK > 50 {
		errors = append(errors, fmt.Sprintf("PLANNER_TOP_K must be between 1 and 50, got %d", p.TopK))
	}

	if p.MaxParallelAttachments < 1 || p.MaxParallelAttachments > 64 {
		errors = append(errors, fmt.Sprintf("PLANNER_MAX_PARALLEL_ATTACHMENTS must be between 1 and 64, got %d", p.MaxParallelAttachments))
	}

	if p.SummaryMaxOutputTokens < 1 {
		errors = append(errors, fmt.Sprintf("PLANNER_SUMMARY_MAX_OUTPUT_TOKENS must be positive, got %d", p.SummaryMaxOutputTokens))
	}

	// Validate knowledge base configuration
	kb := cfg.KnowledgeBaseCfg
	switch kb.Backend {
	case KnowledgeBackendSQLite:
		if kb.Path == "" {
			errors = append(errors, "KB_PATH must be set for the sqlite backend")
		}
	case KnowledgeBackendPostgres:
		if kb.DatabaseURL == "" {
			errors = append(errors, "KB_DATABASE_URL must be set for the postgres backend")
		}
		if kb.DBMaxConns < 1 || kb.DBMaxConns > 200 {
			errors = append(errors, fmt.Sprintf("KB_DB_MAX_CONNS must be between 1 and 200, got %d", kb.DBMaxConns))
		}
		if kb.DBMinConns < 0 || kb.DBMinConns > kb.DBMaxConns {
			errors = append(errors, fmt.Sprintf("KB_DB_MIN_CONNS must be between 0 and KB_DB_MAX_CONNS(%d), got %d", kb.DBMaxConns, kb.DBMinConns))
		}
	case KnowledgeBackendMemory:
	default:
		errors = append(errors, fmt.Sprintf("KB_BACKEND must be one of sqlite, postgres, memory, got %q", kb.Backend))
	}

	if cfg.EmbeddingConnectorCfg.BatchSize < 1 {
		errors = append(errors, fmt.Sprintf("EMBEDDING_BATCH_SIZE must be positive, got %d", cfg.EmbeddingConnectorCfg.BatchSize))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
