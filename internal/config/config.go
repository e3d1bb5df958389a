package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// ScriptPath points at a YAML or JSONC script. Empty means the
	// built-in script.
	ScriptPath    string        `envconfig:"SCRIPT_PATH"`
	DecayInterval time.Duration `envconfig:"DECAY_INTERVAL" default:"3s"`
	ToastDuration time.Duration `envconfig:"TOAST_DURATION" default:"5s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"clean-kitchen.log"`
}

// LoadConfig loads the configuration from environment variables, after
// merging an optional .env file from the working directory.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	if c.DecayInterval <= 0 {
		return fmt.Errorf("DECAY_INTERVAL must be positive, got %v", c.DecayInterval)
	}
	if c.ToastDuration <= 0 {
		return fmt.Errorf("TOAST_DURATION must be positive, got %v", c.ToastDuration)
	}
	return nil
}

// RequireGemini reports whether the Gemini player can be used.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	return nil
}
