package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultMaxContentLength caps generated post content when MAX_CONTENT_LENGTH
// is not set.
const DefaultMaxContentLength = 500

// Config holds every runtime setting the system needs. It is built once at
// startup from the environment and passed into each component; no component
// reads the environment on its own.
type Config struct {
	// Text generation
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Persistence
	DBPath string

	// Target blog
	BlogURL      string
	BlogUsername string
	BlogPassword string

	// Optional settings
	MaxContentLength int
	FeedsFile        string
}

// FromEnv collects configuration from environment variables. Call Validate
// before handing the result to any component.
func FromEnv() *Config {
	cfg := &Config{
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		DBPath:           os.Getenv("AUTOBLOG_DB_PATH"),
		BlogURL:          os.Getenv("BLOG_URL"),
		BlogUsername:     os.Getenv("BLOG_USERNAME"),
		BlogPassword:     os.Getenv("BLOG_PASSWORD"),
		FeedsFile:        os.Getenv("AUTOBLOG_FEEDS_FILE"),
		MaxContentLength: DefaultMaxContentLength,
	}

	if raw := os.Getenv("MAX_CONTENT_LENGTH"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.MaxContentLength = n
		}
	}

	return cfg
}

// Validate reports every missing required value at once so the operator can
// fix the environment in a single pass. It must be called before any network
// or database activity.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"OPENAI_API_KEY", c.OpenAIKey},
		{"AUTOBLOG_DB_PATH", c.DBPath},
		{"BLOG_URL", c.BlogURL},
		{"BLOG_USERNAME", c.BlogUsername},
		{"BLOG_PASSWORD", c.BlogPassword},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
