// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Generation backend selectors.
const (
	BackendStub   = "stub"
	BackendGemini = "gemini"
)

// Config holds all runtime configuration. Values come from environment
// variables (a .env file is loaded by main); every field has a default
// except credentials.
type Config struct {
	Port int

	// Generation
	ModelBackend    string
	GeminiAPIKey    string
	GeminiModel     string
	MaxPromptTokens int
	MaxOutputTokens int
	Temperature     float64

	// Orchestration
	FitThreshold float64

	// Paths
	ResumePath string
	DataDir    string
	OutDir     string

	// Posting acquisition providers, priority-ordered by credential presence.
	ScrapeAPIURL   string
	ScrapeAPIKey   string
	BrowserEnabled bool
	BrowserTimeout time.Duration

	// Tracking store
	NotionAPIKey     string
	NotionDatabaseID string

	// Logging
	LogJSON bool
	Debug   bool
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port: getEnvInt("PORT", 8080),

		ModelBackend:    getEnvString("MODEL_BACKEND", BackendStub),
		GeminiAPIKey:    getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:     getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
		MaxPromptTokens: getEnvInt("MAX_PROMPT_TOKENS", 2000),
		MaxOutputTokens: getEnvInt("MAX_OUTPUT_TOKENS", 500),
		Temperature:     getEnvFloat("LLM_TEMPERATURE", 0.2),

		FitThreshold: getEnvFloat("FIT_THRESHOLD", 7.0),

		ResumePath: getEnvString("RESUME_PATH", "resume.pdf"),
		DataDir:    getEnvString("DATA_DIR", ".jobpilot"),
		OutDir:     getEnvString("OUT_DIR", "out"),

		ScrapeAPIURL:   getEnvString("SCRAPE_API_URL", ""),
		ScrapeAPIKey:   getEnvString("SCRAPE_API_KEY", ""),
		BrowserEnabled: getEnvBool("BROWSER_ENABLED", true),
		BrowserTimeout: getEnvDuration("BROWSER_TIMEOUT", 60*time.Second),

		NotionAPIKey:     getEnvString("NOTION_INTEGRATION_KEY", ""),
		NotionDatabaseID: getEnvString("NOTION_DATABASE_ID", ""),

		LogJSON: getEnvBool("LOG_JSON", false),
		Debug:   getEnvBool("DEBUG", false),
	}
}

// Validate checks for fatal configuration errors. Selecting a paid backend
// without its credential is rejected here rather than at call time.
func (c *Config) Validate() error {
	switch c.ModelBackend {
	case BackendStub:
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: MODEL_BACKEND=gemini requires GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("config error: unknown MODEL_BACKEND %q", c.ModelBackend)
	}

	if c.MaxPromptTokens < 1 {
		return fmt.Errorf("config error: MAX_PROMPT_TOKENS must be positive")
	}
	if c.MaxOutputTokens < 1 {
		return fmt.Errorf("config error: MAX_OUTPUT_TOKENS must be positive")
	}
	if c.FitThreshold < 0 || c.FitThreshold > 10 {
		return fmt.Errorf("config error: FIT_THRESHOLD must be between 0 and 10")
	}
	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float with a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
