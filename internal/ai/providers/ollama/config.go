package ollama

import (
	"time"

	"github.com/jomohunter/DueDil/internal/ai"
)

// Config holds Ollama-specific configuration
type Config struct {
	// BaseURL is the Ollama API endpoint
	BaseURL string `json:"base_url"`

	// CompletionModel is the model used for answer generation
	CompletionModel string `json:"completion_model"`

	// EmbedModel is the model used for embeddings
	EmbedModel string `json:"embed_model"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`

	// DefaultTemperature for completion requests
	DefaultTemperature float64 `json:"default_temperature"`
}

// DefaultConfig returns a default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "http://localhost:11434",
		CompletionModel:    "llama3.1",
		EmbedModel:         "nomic-embed-text",
		Timeout:            30 * time.Second,
		DefaultTemperature: 0.1,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ai.NewConfigurationError("ollama", "base_url", "base URL is required")
	}

	if c.CompletionModel == "" {
		return ai.NewConfigurationError("ollama", "completion_model", "completion model is required")
	}

	if c.EmbedModel == "" {
		return ai.NewConfigurationError("ollama", "embed_model", "embed model is required")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError("ollama", "timeout", "timeout must be positive")
	}

	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return ai.NewConfigurationError("ollama", "default_temperature", "temperature must be between 0 and 1")
	}

	return nil
}
