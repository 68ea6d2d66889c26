package openai

import (
	"time"

	"github.com/jomohunter/DueDil/internal/ai"
)

const (
	// DefaultEmbedModel is the embedding model used when none is configured
	DefaultEmbedModel = "text-embedding-3-small"

	// DefaultCompletionModel is the chat model used when none is configured
	DefaultCompletionModel = "gpt-4o-mini"
)

// Config holds OpenAI-specific configuration
type Config struct {
	// APIKey authenticates against the OpenAI API
	APIKey string `json:"-"`

	// BaseURL overrides the API endpoint, for proxies and compatible servers
	BaseURL string `json:"base_url,omitempty"`

	// CompletionModel is the model used for answer generation
	CompletionModel string `json:"completion_model"`

	// EmbedModel is the model used for embeddings
	EmbedModel string `json:"embed_model"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`

	// DefaultTemperature for completion requests
	DefaultTemperature float64 `json:"default_temperature"`
}

// DefaultConfig returns a default OpenAI configuration. The API key must
// still be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		CompletionModel:    DefaultCompletionModel,
		EmbedModel:         DefaultEmbedModel,
		Timeout:            30 * time.Second,
		DefaultTemperature: 0.1,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError("openai", "api_key", "API key is required")
	}

	if c.CompletionModel == "" {
		return ai.NewConfigurationError("openai", "completion_model", "completion model is required")
	}

	if c.EmbedModel == "" {
		return ai.NewConfigurationError("openai", "embed_model", "embed model is required")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError("openai", "timeout", "timeout must be positive")
	}

	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return ai.NewConfigurationError("openai", "default_temperature", "temperature must be between 0 and 1")
	}

	return nil
}
