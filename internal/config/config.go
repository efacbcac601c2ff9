package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/overlap/internal/configs/env"
	"github.com/RishiKendai/overlap/internal/matcher"
)

const (
	CanonicalizerLocal  = "local"
	CanonicalizerRemote = "remote"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// Canonicalization
	Canonicalizer       string
	CanonicalizerURL    string
	CanonicalizerAPIKey string
	StemLanguage        string

	// Scoring
	ShingleSize      int
	DefaultAlgorithm matcher.Kind
	AlphabetSize     int
	SearchWorkers    int
	UnitTimeout      time.Duration

	// Corpus
	ResultCacheTTL time.Duration
	CorpusSeedFile string

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentChecks int
	CheckTimeout        time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "corpus:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "corpus:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "corpus:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// Canonicalization
	cfg.Canonicalizer = env.GetEnv("CANONICALIZER", CanonicalizerLocal)
	cfg.CanonicalizerURL = env.GetEnv("CANONICALIZER_URL", "")
	cfg.CanonicalizerAPIKey = env.GetEnv("CANONICALIZER_API_KEY", "")
	cfg.StemLanguage = env.GetEnv("STEM_LANGUAGE", "english")

	// Scoring
	cfg.ShingleSize = env.GetEnvInt("SHINGLE_SIZE", 3)
	cfg.AlphabetSize = env.GetEnvInt("ALPHABET_SIZE", matcher.DefaultAlphabetSize)
	cfg.SearchWorkers = env.GetEnvInt("SEARCH_WORKERS", 0)
	cfg.UnitTimeout = time.Duration(env.GetEnvInt("UNIT_TIMEOUT_MS", 0)) * time.Millisecond

	kind, err := matcher.ParseKind(env.GetEnv("DEFAULT_ALGORITHM", string(matcher.KindKMP)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_ALGORITHM: %w", err)
	}
	cfg.DefaultAlgorithm = kind

	// Corpus
	cfg.ResultCacheTTL = time.Duration(env.GetEnvInt("RESULT_CACHE_TTL", 60)) * time.Minute
	cfg.CorpusSeedFile = env.GetEnv("CORPUS_SEED_FILE", "")

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "overlap")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentChecks = env.GetEnvInt("MAX_CONCURRENT_CHECKS", 5)
	cfg.CheckTimeout = time.Duration(env.GetEnvInt("CHECK_TIMEOUT_MINUTES", 5)) * time.Minute

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	switch c.Canonicalizer {
	case CanonicalizerLocal:
	case CanonicalizerRemote:
		if c.CanonicalizerURL == "" {
			return fmt.Errorf("CANONICALIZER_URL is required when CANONICALIZER=remote")
		}
	default:
		return fmt.Errorf("CANONICALIZER must be %q or %q, got %q", CanonicalizerLocal, CanonicalizerRemote, c.Canonicalizer)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.ShingleSize <= 0 {
		return fmt.Errorf("SHINGLE_SIZE must be greater than 0")
	}
	if c.AlphabetSize <= 0 {
		return fmt.Errorf("ALPHABET_SIZE must be greater than 0")
	}
	if c.MaxConcurrentChecks <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.ResultCacheTTL <= 0 {
		return fmt.Errorf("RESULT_CACHE_TTL must be greater than 0")
	}
	return nil
}
