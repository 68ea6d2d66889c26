package openai

import (
	"context"
	"net/http"
	"sync"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/jomohunter/DueDil/internal/ai"
)

// Provider implements the AI provider interface for OpenAI and
// API-compatible servers.
type Provider struct {
	config *Config
	client *goopenai.Client

	dimMu     sync.RWMutex
	dimension int
}

// New creates a new OpenAI provider instance
func New(config *Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Provider{
		config: config,
		client: goopenai.NewClientWithConfig(clientConfig),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "openai"
}

// Complete performs text completion via the chat completions API
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = p.config.CompletionModel
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.DefaultTemperature
	}

	var messages []goopenai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := goopenai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeCompletion, "chat completion failed", "openai", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeCompletion, "no choices in response", "openai")
	}

	choice := resp.Choices[0]

	return &ai.CompletionResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: &ai.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model:     resp.Model,
		CreatedAt: startTime,
	}, nil
}

// Embed returns the embedding vector for the given text
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "cannot embed empty text", "openai")
	}

	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(p.config.EmbedModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeEmbedding, "embedding request failed", "openai", err)
	}

	if len(resp.Data) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeEmbedding, "no embedding data returned", "openai")
	}

	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)

	p.setDimension(len(vector))

	return vector, nil
}

// Dimension returns the embedding dimensionality observed on the first
// successful Embed call, or 0 before any call has succeeded.
func (p *Provider) Dimension() int {
	p.dimMu.RLock()
	defer p.dimMu.RUnlock()
	return p.dimension
}

// CountTokens estimates token count for the given text
func (p *Provider) CountTokens(text string) (int, error) {
	// Simple token estimation (roughly 4 characters per token)
	return len(text) / 4, nil
}

// HealthCheck verifies provider connectivity and status
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "health check failed", "openai", err)
	}
	return nil
}

// Close cleans up provider resources
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) setDimension(dim int) {
	p.dimMu.Lock()
	defer p.dimMu.Unlock()
	if p.dimension == 0 {
		p.dimension = dim
	}
}
