// ABOUTME: Centralized configuration for the recall engine
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the engine
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Memory settings
	RetrievalLimit  int
	MinToConfirm    int
	VectorDimension int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DBPath:          getEnv("RECALL_DB_PATH", DefaultDBPath()),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ChatModel:       getEnv("RECALL_OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  getEnv("RECALL_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		RetrievalLimit:  getEnvInt("RECALL_RETRIEVAL_LIMIT", 5),
		MinToConfirm:    getEnvInt("RECALL_MIN_TO_CONFIRM", 3),
		VectorDimension: getEnvInt("VECTOR_DIMENSION", 1536),
	}

	return cfg, cfg.Validate()
}

// DefaultDBPath returns the XDG data-dir location of the database
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "recall", "recall.db")
}

func (c *Config) Validate() error {
	if c.RetrievalLimit <= 0 {
		return fmt.Errorf("RECALL_RETRIEVAL_LIMIT must be positive, got %d", c.RetrievalLimit)
	}
	if c.MinToConfirm <= 0 {
		return fmt.Errorf("RECALL_MIN_TO_CONFIRM must be positive, got %d", c.MinToConfirm)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
