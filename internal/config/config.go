package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/docbrief/nlp-engine/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":8000"`

	// Engine configuration
	IndexCfg    IndexConfig    `envPrefix:"INDEX_"`
	PipelineCfg PipelineConfig `envPrefix:"PIPELINE_"`

	// External service configurations
	GenerationCfg GenerationConfig   `envPrefix:"GENERATION_"`
	OCRCfg        OCRConnectorConfig `envPrefix:"OCR_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

// IndexConfig controls the per-owner vector index store.
type IndexConfig struct {
	Dir       string        `env:"DIR" envDefault:"vector_stores"`
	Dimension int           `env:"DIMENSION" envDefault:"384"`
	Persist   bool          `env:"PERSIST" envDefault:"false"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"15m"`
}

// PipelineConfig controls orchestration limits.
type PipelineConfig struct {
	TopK             int  `env:"TOP_K" envDefault:"4"`
	MaxPageChars     int  `env:"MAX_PAGE_CHARS" envDefault:"3000"`
	PageConcurrency  int  `env:"PAGE_CONCURRENCY" envDefault:"4"`
	ChunkSize        int  `env:"CHUNK_SIZE" envDefault:"500"`
	ChunkOverlap     int  `env:"CHUNK_OVERLAP" envDefault:"50"`
	PersistentCorpus bool `env:"PERSISTENT_CORPUS" envDefault:"false"`
}

// GenerationConfig configures the external text-generation capability
// (an OpenAI-compatible chat completion API).
type GenerationConfig struct {
	APIKey           string               `env:"API_KEY"`
	BaseURL          string               `env:"BASE_URL" envDefault:"https://api.perplexity.ai"`
	Model            string               `env:"MODEL" envDefault:"sonar-pro"`
	Temperature      float64              `env:"TEMPERATURE" envDefault:"0.5"`
	MaxTokens        int                  `env:"MAX_TOKENS" envDefault:"2000"`
	RequestTimeout   time.Duration        `env:"TIMEOUT" envDefault:"120s"`
	SummarizeTimeout time.Duration        `env:"SUMMARIZE_TIMEOUT" envDefault:"45s"`
	Retry            pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type OCRConnectorConfig struct {
	HTTPClientConfig
	RecognizeEndpoint string               `env:"RECOGNIZE_ENDPOINT" envDefault:"/recognize"`
	Retry             pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL" envDefault:"http://localhost:9100"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"5242880"`    // 5 MiB
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
	var errs []string

	if cfg.IndexCfg.Dimension < 8 || cfg.IndexCfg.Dimension > 4096 {
		errs = append(errs, fmt.Sprintf("INDEX_DIMENSION must be between 8 and 4096, got %d", cfg.IndexCfg.Dimension))
	}

	if cfg.PipelineCfg.TopK < 1 || cfg.PipelineCfg.TopK > 50 {
		errs = append(errs, fmt.Sprintf("PIPELINE_TOP_K must be between 1 and 50, got %d", cfg.PipelineCfg.TopK))
	}

	if cfg.PipelineCfg.ChunkOverlap >= cfg.PipelineCfg.ChunkSize {
		errs = append(errs, fmt.Sprintf("PIPELINE_CHUNK_OVERLAP(%d) must be smaller than PIPELINE_CHUNK_SIZE(%d)",
			cfg.PipelineCfg.ChunkOverlap, cfg.PipelineCfg.ChunkSize))
	}

	if cfg.PipelineCfg.PageConcurrency < 1 || cfg.PipelineCfg.PageConcurrency > 32 {
		errs = append(errs, fmt.Sprintf("PIPELINE_PAGE_CONCURRENCY must be between 1 and 32, got %d", cfg.PipelineCfg.PageConcurrency))
	}

	// A durable corpus held only in the expiring cache would evaporate
	// on TTL; accumulation requires the snapshot store underneath it.
	if cfg.PipelineCfg.PersistentCorpus && !cfg.IndexCfg.Persist {
		errs = append(errs, "PIPELINE_PERSISTENT_CORPUS=true requires INDEX_PERSIST=true")
	}

	if !cfg.EnableMocks && cfg.GenerationCfg.APIKey == "" {
		errs = append(errs, "GENERATION_API_KEY is required unless ENABLE_MOCKS is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errs, "\n  - "))
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
