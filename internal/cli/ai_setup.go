package cli

import (
	"fmt"
	"strings"

	"github.com/jomohunter/DueDil/internal/ai"
	"github.com/jomohunter/DueDil/internal/ai/providers/ollama"
	"github.com/jomohunter/DueDil/internal/ai/providers/openai"
	"github.com/jomohunter/DueDil/internal/config"
)

// createProvider creates an AI provider based on configuration.
func createProvider(aiConfig *config.AIConfig) (ai.Provider, error) {
	switch strings.ToLower(aiConfig.Provider) {
	case "openai":
		return createOpenAIProvider(aiConfig)
	case "ollama":
		return createOllamaProvider(aiConfig)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", aiConfig.Provider)
	}
}

// createOpenAIProvider creates an OpenAI provider with configuration.
func createOpenAIProvider(aiConfig *config.AIConfig) (ai.Provider, error) {
	openaiConfig := &openai.Config{
		APIKey:          aiConfig.APIKey,
		BaseURL:         aiConfig.Endpoint,
		CompletionModel: aiConfig.Model,
		EmbedModel:      aiConfig.EmbedModel,
		Timeout:         aiConfig.Timeout,
	}

	// Apply defaults if not configured
	if openaiConfig.CompletionModel == "" {
		openaiConfig.CompletionModel = openai.DefaultCompletionModel
	}
	if openaiConfig.EmbedModel == "" {
		openaiConfig.EmbedModel = openai.DefaultEmbedModel
	}
	if openaiConfig.Timeout == 0 {
		openaiConfig.Timeout = openai.DefaultConfig().Timeout
	}

	return openai.New(openaiConfig)
}

// createOllamaProvider creates an Ollama provider with configuration.
func createOllamaProvider(aiConfig *config.AIConfig) (ai.Provider, error) {
	ollamaConfig := ollama.DefaultConfig()
	if aiConfig.Endpoint != "" {
		ollamaConfig.BaseURL = aiConfig.Endpoint
	}
	if aiConfig.Model != "" {
		ollamaConfig.CompletionModel = aiConfig.Model
	}
	if aiConfig.EmbedModel != "" {
		ollamaConfig.EmbedModel = aiConfig.EmbedModel
	}
	if aiConfig.Timeout != 0 {
		ollamaConfig.Timeout = aiConfig.Timeout
	}

	return ollama.New(ollamaConfig)
}
