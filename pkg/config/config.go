package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	apperrors "studymap/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	// App
	Port     string
	Env      string
	LogLevel string

	// Database
	DBPath string

	// AI backend (Ollama or any OpenAI-compatible gateway)
	OllamaBaseURL    string
	OllamaModel      string
	OllamaAPIKey     string
	AITimeoutSeconds int
	AITemperature    float64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		DBPath:           getEnv("DB_PATH", "study_map.db"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3.2"),
		OllamaAPIKey:     getEnv("OLLAMA_API_KEY", ""),
		AITimeoutSeconds: getEnvInt("AI_TIMEOUT_SECONDS", 120),
		AITemperature:    getEnvFloat("AI_TEMPERATURE", 0.3),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return apperrors.NewConfigMissingRequired("DB_PATH")
	}
	if c.OllamaBaseURL == "" {
		return apperrors.NewConfigMissingRequired("OLLAMA_BASE_URL")
	}
	if c.OllamaModel == "" {
		return apperrors.NewConfigMissingRequired("OLLAMA_MODEL")
	}
	if c.AITimeoutSeconds <= 0 {
		return apperrors.NewConfigValidationFailed("AI_TIMEOUT_SECONDS", "must be positive")
	}
	// API key is optional: plain Ollama ignores it, gateways may require it
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
