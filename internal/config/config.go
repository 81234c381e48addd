package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	APIKey               string `mapstructure:"API_KEY"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	AccessTokenExpireMin int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	TrustUserHeader      bool   `mapstructure:"TRUST_USER_HEADER"`
	InsecureAuth         bool   `mapstructure:"INSECURE_AUTH"` // local development only: no API key

	// Object storage
	StorageBackend     string `mapstructure:"STORAGE_BACKEND"`
	StoragePath        string `mapstructure:"STORAGE_PATH"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3Region           string `mapstructure:"S3_REGION"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	AWSAccessKeyID     string `mapstructure:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	MaxUploadSize      int64  `mapstructure:"MAX_UPLOAD_SIZE"`

	// Vector index
	VectorBackend string `mapstructure:"VECTOR_BACKEND"`

	// Embedding Service (OpenAI compatible)
	EmbeddingAPIKey      string  `mapstructure:"EMBEDDING_API_KEY"`
	EmbeddingBaseURL     string  `mapstructure:"EMBEDDING_BASE_URL"`
	EmbeddingModel       string  `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingDimensions  int     `mapstructure:"EMBEDDING_DIMENSIONS"`
	EmbeddingBatchSize   int     `mapstructure:"EMBEDDING_BATCH_SIZE"`
	EmbeddingConcurrency int     `mapstructure:"EMBEDDING_CONCURRENCY"`
	EmbeddingRateLimit   float64 `mapstructure:"EMBEDDING_RATE_LIMIT"`

	// Generation
	LLMProvider    string  `mapstructure:"LLM_PROVIDER"`
	LLMAPIKey      string  `mapstructure:"LLM_API_KEY"`
	LLMBaseURL     string  `mapstructure:"LLM_BASE_URL"`
	LLMModel       string  `mapstructure:"LLM_MODEL"`
	LLMMaxTokens   int     `mapstructure:"LLM_MAX_TOKENS"`
	LLMTemperature float32 `mapstructure:"LLM_TEMPERATURE"`

	// RAG
	RAGTopK      int `mapstructure:"RAG_TOP_K"`
	ChunkSize    int `mapstructure:"CHUNK_SIZE"`
	ChunkOverlap int `mapstructure:"CHUNK_OVERLAP"`

	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`
}

var keys = []string{
	"PORT", "GIN_MODE", "ENVIRONMENT", "LOG_LEVEL",
	"DATABASE_URL", "REDIS_URL",
	"API_KEY", "JWT_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES", "TRUST_USER_HEADER", "INSECURE_AUTH",
	"STORAGE_BACKEND", "STORAGE_PATH", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
	"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "MAX_UPLOAD_SIZE",
	"VECTOR_BACKEND",
	"EMBEDDING_API_KEY", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_DIMENSIONS",
	"EMBEDDING_BATCH_SIZE", "EMBEDDING_CONCURRENCY", "EMBEDDING_RATE_LIMIT",
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_MAX_TOKENS", "LLM_TEMPERATURE",
	"RAG_TOP_K", "CHUNK_SIZE", "CHUNK_OVERLAP",
	"UPSTREAM_TIMEOUT",
}

// Load reads configuration from an optional .env file and the process environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite://chariott.db")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 60)
	v.SetDefault("TRUST_USER_HEADER", false)
	v.SetDefault("INSECURE_AUTH", false)
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("STORAGE_PATH", "./storage")
	v.SetDefault("S3_REGION", "us-west-1")
	v.SetDefault("MAX_UPLOAD_SIZE", 50*1024*1024) // 50MB
	v.SetDefault("VECTOR_BACKEND", "memory")
	v.SetDefault("EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("EMBEDDING_DIMENSIONS", 1536)
	v.SetDefault("EMBEDDING_BATCH_SIZE", 16)
	v.SetDefault("EMBEDDING_CONCURRENCY", 4)
	v.SetDefault("EMBEDDING_RATE_LIMIT", 10)
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 512)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("RAG_TOP_K", 5)
	v.SetDefault("CHUNK_SIZE", 1000)
	v.SetDefault("CHUNK_OVERLAP", 200)
	v.SetDefault("UPSTREAM_TIMEOUT", "60s")

	// Try to read .env file (optional)
	_ = v.ReadInConfig()

	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			v.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MinJWTSecretLength is the shortest JWT_SECRET accepted for HS256 signing.
const MinJWTSecretLength = 32

var (
	ErrMissingAPIKey = errors.New("API_KEY is required (set INSECURE_AUTH=true to run without one)")
	ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 bytes")
)

// Validate rejects configurations that would leave the API unauthenticated.
// The JWT secret is checked even with INSECURE_AUTH, since tokens are the
// identity behind ownership checks.
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" && !c.InsecureAuth {
		errs = append(errs, ErrMissingAPIKey)
	}
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, ErrWeakJWTSecret)
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Environment) == "development"
}
