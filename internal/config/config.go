package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider kinds accepted in LLM_PROVIDER.
const (
	ProviderLocal     = "local"
	ProviderCustom    = "custom"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultLocalTimeout  = 60 * time.Second
	defaultRemoteTimeout = 10 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	DBPath  string
	APIPort string

	LLMProvider  string
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string
	// LLMAPIKeyEnv names the variable that holds a remote provider key.
	// The credential gate reads it before every remote model call.
	LLMAPIKeyEnv     string
	LocalLLMTimeout  time.Duration
	RemoteLLMTimeout time.Duration
	PromptLogging    bool

	ConsistencyHints     bool
	CategoryLanguage     string
	WhitelistFile        string
	WhitelistName        string
	Whitelist            *Whitelist
	TaxonomySnapshotSize int
	ConsistencyChunkSize int
	ConsistencyMaxTokens int

	CleanupSchedule string

	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is
// loaded first. Environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderLocal))

	cfg := &Config{
		DBPath:               getEnv("DB_PATH", "./data/filesorter.db"),
		APIPort:              getEnv("API_PORT", "9000"),
		LLMProvider:          provider,
		LLMBaseURL:           getEnv("LLM_BASE_URL", defaultBaseURL(provider)),
		LLMModelName:         getEnv("LLM_MODEL", defaultModel(provider)),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMAPIKeyEnv:         getEnv("LLM_API_KEY_ENV", defaultKeyEnv(provider)),
		LocalLLMTimeout:      timeoutFromEnv("LOCAL_LLM_TIMEOUT", "AI_FILE_SORTER_LOCAL_LLM_TIMEOUT", defaultLocalTimeout),
		RemoteLLMTimeout:     timeoutFromEnv("REMOTE_LLM_TIMEOUT", "AI_FILE_SORTER_REMOTE_LLM_TIMEOUT", defaultRemoteTimeout),
		PromptLogging:        getEnvBool("PROMPT_LOGGING", false),
		ConsistencyHints:     getEnvBool("CONSISTENCY_HINTS", true),
		CategoryLanguage:     getEnv("CATEGORY_LANGUAGE", "English"),
		WhitelistFile:        getEnv("WHITELIST_FILE", ""),
		WhitelistName:        getEnv("WHITELIST_NAME", ""),
		TaxonomySnapshotSize: getEnvInt("TAXONOMY_SNAPSHOT_SIZE", 150),
		ConsistencyChunkSize: getEnvInt("CONSISTENCY_CHUNK_SIZE", 10),
		ConsistencyMaxTokens: getEnvInt("CONSISTENCY_MAX_TOKENS", 512),
		QdrantURL:            getEnv("QDRANT_URL", ""),
		QdrantCollection:     getEnv("QDRANT_COLLECTION", "taxonomy"),
		QdrantVectorSize:     getEnvInt("QDRANT_VECTOR_SIZE", 0),
		EmbeddingBaseURL:     getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName:   getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		LogLevel:             parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// An explicitly empty CLEANUP_SCHEDULE disables the sweep.
	if v, ok := os.LookupEnv("CLEANUP_SCHEDULE"); ok {
		cfg.CleanupSchedule = strings.TrimSpace(v)
	} else {
		cfg.CleanupSchedule = "0 3 * * *"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.WhitelistFile != "" {
		wl, err := LoadWhitelist(cfg.WhitelistFile, cfg.WhitelistName)
		if err != nil {
			return nil, err
		}
		cfg.Whitelist = wl
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderLocal, ProviderCustom, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("LLM_PROVIDER must be one of local, custom, openai, anthropic, got %q", c.LLMProvider)
	}
	if c.LLMProvider == ProviderCustom && c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required for the custom provider")
	}
	if c.LocalLLMTimeout <= 0 || c.RemoteLLMTimeout <= 0 {
		return fmt.Errorf("LLM timeouts must be greater than 0")
	}
	if c.TaxonomySnapshotSize <= 0 {
		return fmt.Errorf("TAXONOMY_SNAPSHOT_SIZE must be greater than 0, got %d", c.TaxonomySnapshotSize)
	}
	if c.ConsistencyChunkSize <= 0 {
		return fmt.Errorf("CONSISTENCY_CHUNK_SIZE must be greater than 0, got %d", c.ConsistencyChunkSize)
	}
	if c.ConsistencyMaxTokens <= 0 {
		return fmt.Errorf("CONSISTENCY_MAX_TOKENS must be greater than 0, got %d", c.ConsistencyMaxTokens)
	}
	// The vector size must match the output of the embeddings model; changing it
	// requires recreating the Qdrant collection.
	if c.QdrantURL != "" && c.QdrantVectorSize <= 0 {
		return fmt.Errorf("QDRANT_VECTOR_SIZE is required when QDRANT_URL is set")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// IsLocalProvider reports whether the configured provider runs on this machine.
func (c *Config) IsLocalProvider() bool {
	return c.LLMProvider == ProviderLocal
}

// LLMTimeout returns the model call timeout for the configured provider.
func (c *Config) LLMTimeout() time.Duration {
	if c.IsLocalProvider() {
		return c.LocalLLMTimeout
	}
	return c.RemoteLLMTimeout
}

func defaultBaseURL(provider string) string {
	if provider == ProviderLocal {
		return "http://localhost:8080"
	}
	return ""
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "Llama-3.1-8B-Instruct"
	}
}

func defaultKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// timeoutFromEnv reads a Go duration from key, then whole seconds from
// legacyKey. Invalid or non-positive values are ignored with a warning.
func timeoutFromEnv(key, legacyKey string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
		slog.Warn("Ignoring invalid timeout", "key", key, "value", v)
	}
	if v := os.Getenv(legacyKey); v != "" {
		secs, err := strconv.Atoi(v)
		if err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
		slog.Warn("Ignoring invalid timeout", "key", legacyKey, "value", v)
	}
	return defaultValue
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
