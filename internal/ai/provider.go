package ai

import (
	"context"
)

// Embedder maps text to a fixed-dimension vector. The same embedder
// instance must be used for both chunk and question embeddings so the
// two live in the same vector space.
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimensionality, or 0 when it is
	// not yet known (lazily set on first successful call)
	Dimension() int
}

// Completer performs chat-completion style text generation
type Completer interface {
	// Complete performs a single completion request
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// Provider combines embedding and completion against a single backend.
// A provider is constructed once at process start, injected by reference
// into the pipeline stages, and closed at process exit.
type Provider interface {
	Embedder
	Completer

	// Name returns the provider name (e.g., "ollama", "openai")
	Name() string

	// CountTokens estimates token count for the given text
	CountTokens(text string) (int, error)

	// HealthCheck verifies provider connectivity and status
	HealthCheck(ctx context.Context) error

	// Close cleans up provider resources
	Close() error
}
