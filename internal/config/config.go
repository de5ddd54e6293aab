package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Embedding backend: "openai" or "ollama"
	Embedder     string
	OpenAIAPIKey string
	EmbedModel   string
	OllamaURL    string

	// Storage backend: "sqlite" or "qdrant"
	Store            string
	SQLitePath       string
	QdrantAddr       string
	QdrantCollection string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentEmbed int

	// Upload limits
	MaxUploadBytes int64

	// Segmentation defaults
	MaxTokensPerChunk    int
	OverlapTokens        int
	MinViableChunkTokens int

	// Embedding batch size
	EmbedBatchSize int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8092"),

		APIKey: os.Getenv("VAULTVEC_API_KEY"),

		Embedder:     envOr("EMBEDDER", "ollama"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		EmbedModel:   os.Getenv("EMBED_MODEL"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),

		Store:            envOr("STORE", "sqlite"),
		SQLitePath:       envOr("SQLITE_PATH", "vaultvec.db"),
		QdrantAddr:       envOr("QDRANT_ADDR", "localhost:6334"),
		QdrantCollection: envOr("QDRANT_COLLECTION", "vaultvec_chunks"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentEmbed: envInt("MAX_CONCURRENT_EMBED", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MaxTokensPerChunk:    envInt("MAX_TOKENS_PER_CHUNK", 1024),
		OverlapTokens:        envInt("OVERLAP_TOKENS", 100),
		MinViableChunkTokens: envInt("MIN_CHUNK_TOKENS", 50),

		EmbedBatchSize: envInt("EMBED_BATCH_SIZE", 16),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentEmbed <= 0 {
		cfg.MaxConcurrentEmbed = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("VAULTVEC_API_KEY is required")
	}
	switch c.Embedder {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when EMBEDDER=openai")
		}
	case "ollama":
	default:
		return fmt.Errorf("EMBEDDER must be openai or ollama, got %q", c.Embedder)
	}
	switch c.Store {
	case "sqlite", "qdrant":
	default:
		return fmt.Errorf("STORE must be sqlite or qdrant, got %q", c.Store)
	}
	if c.MaxTokensPerChunk <= 0 {
		return fmt.Errorf("MAX_TOKENS_PER_CHUNK must be positive")
	}
	if c.OverlapTokens < 0 {
		return fmt.Errorf("OVERLAP_TOKENS must not be negative")
	}
	if c.OverlapTokens >= c.MaxTokensPerChunk {
		return fmt.Errorf("OVERLAP_TOKENS must be smaller than MAX_TOKENS_PER_CHUNK")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
