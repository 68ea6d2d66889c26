package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jomohunter/DueDil/internal/ai"
)

func TestProvider_New(t *testing.T) {
	config := DefaultConfig()

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if provider.Name() != "ollama" {
		t.Errorf("Expected provider name 'ollama', got '%s'", provider.Name())
	}

	if provider.Dimension() != 0 {
		t.Errorf("Expected dimension 0 before first embed, got %d", provider.Dimension())
	}
}

func TestProvider_New_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.EmbedModel = ""

	if _, err := New(config); err == nil {
		t.Error("Expected error for missing embed model")
	}
}

func TestProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path '/api/generate', got '%s'", r.URL.Path)
		}

		if r.Method != "POST" {
			t.Errorf("Expected POST method, got '%s'", r.Method)
		}

		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		if req.Model == "" {
			t.Error("Expected model to be set")
		}

		if req.Prompt == "" {
			t.Error("Expected prompt to be set")
		}

		resp := GenerateResponse{
			Model:           req.Model,
			Response:        "This is a test response.",
			Done:            true,
			CreatedAt:       time.Now(),
			PromptEvalCount: 10,
			EvalCount:       5,
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx := context.Background()
	req := &ai.CompletionRequest{
		Prompt:      "Test prompt",
		Temperature: 0.1,
		MaxTokens:   100,
	}

	resp, err := provider.Complete(ctx, req)
	if err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}

	if resp.Content != "This is a test response." {
		t.Errorf("Expected content 'This is a test response.', got '%s'", resp.Content)
	}

	if resp.Usage.TotalTokens != 15 {
		t.Errorf("Expected total tokens 15, got %d", resp.Usage.TotalTokens)
	}
}

func TestProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "model not found"})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), &ai.CompletionRequest{Prompt: "test"})
	if err == nil {
		t.Fatal("Expected error from failing server")
	}

	if !ai.IsCompletionError(err) {
		t.Errorf("Expected completion error, got %v", err)
	}
}

func TestProvider_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("Expected path '/api/embeddings', got '%s'", r.URL.Path)
		}

		var req EmbeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		if req.Model != "nomic-embed-text" {
			t.Errorf("Expected embed model 'nomic-embed-text', got '%s'", req.Model)
		}

		resp := EmbeddingsResponse{
			Embedding: []float64{0.1, 0.2, 0.3, 0.4},
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	vector, err := provider.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Failed to embed: %v", err)
	}

	if len(vector) != 4 {
		t.Errorf("Expected 4-dimensional vector, got %d", len(vector))
	}

	if provider.Dimension() != 4 {
		t.Errorf("Expected dimension 4 after embed, got %d", provider.Dimension())
	}
}

func TestProvider_Embed_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(EmbeddingsResponse{})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Embed(context.Background(), "some text")
	if err == nil {
		t.Fatal("Expected error for empty embedding")
	}

	if !ai.IsEmbeddingError(err) {
		t.Errorf("Expected embedding error, got %v", err)
	}
}

func TestProvider_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Expected path '/api/tags', got '%s'", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TagsResponse{Models: []Model{{Name: "llama3.1"}}})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	provider, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if err := provider.HealthCheck(context.Background()); err != nil {
		t.Errorf("Expected healthy provider, got %v", err)
	}
}

func TestProvider_CountTokens(t *testing.T) {
	provider, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	count, err := provider.CountTokens("this is a test string")
	if err != nil {
		t.Fatalf("Failed to count tokens: %v", err)
	}

	if count != len("this is a test string")/4 {
		t.Errorf("Unexpected token count %d", count)
	}
}
