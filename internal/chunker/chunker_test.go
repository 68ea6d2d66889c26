package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/jomohunter/DueDil/internal/ai"
)

type fakeEmbedder struct {
	dim  int
	fail bool
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.fail {
		return nil, ai.NewProviderError(ai.ErrTypeValidation, "embedder unavailable", "fake")
	}
	v := make([]float32, f.dim)
	v[0] = float32(len(text))
	return v, nil
}

func (f *fakeEmbedder) Dimension() int {
	return f.dim
}

func TestSplit_Empty(t *testing.T) {
	c := New(DefaultConfig(), nil)

	if got := c.Split("   \n  "); got != nil {
		t.Errorf("Split() = %v, want nil", got)
	}
}

func TestSplit_ShortText(t *testing.T) {
	c := New(DefaultConfig(), nil)

	got := c.Split("a short paragraph that fits in one chunk")
	if len(got) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(got))
	}
	if got[0] != "a short paragraph that fits in one chunk" {
		t.Errorf("Split() = %q", got[0])
	}
}

func TestSplit_RespectsMaxTokens(t *testing.T) {
	cfg := Config{MaxTokens: 20, OverlapTokens: 5, Workers: 1}
	c := New(cfg, nil)

	sentences := []string{
		"alpha beta gamma one.",
		"alpha beta gamma two.",
		"alpha beta gamma three.",
		"alpha beta gamma four.",
		"alpha beta gamma five.",
		"alpha beta gamma six.",
	}
	text := strings.Join(sentences, " ")

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	counter := NewEstimator()
	for i, chunk := range chunks {
		if counter.Count(chunk) > cfg.MaxTokens {
			t.Errorf("chunk %d has %d tokens, exceeds max %d: %q",
				i, counter.Count(chunk), cfg.MaxTokens, chunk)
		}
	}

	for _, s := range sentences {
		found := false
		for _, chunk := range chunks {
			if strings.Contains(chunk, s) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("sentence %q missing from all chunks", s)
		}
	}
}

func TestSplit_Overlap(t *testing.T) {
	cfg := Config{MaxTokens: 20, OverlapTokens: 5, Workers: 1}
	c := New(cfg, nil)

	sentences := []string{
		"alpha beta gamma one.",
		"alpha beta gamma two.",
		"alpha beta gamma three.",
		"alpha beta gamma four.",
		"alpha beta gamma five.",
		"alpha beta gamma six.",
	}
	chunks := c.Split(strings.Join(sentences, " "))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Each chunk after the first must start with material repeated from
	// its predecessor.
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitN(chunks[i], ".", 2)[0] + "."
		if !strings.Contains(chunks[i-1], first) {
			t.Errorf("chunk %d does not overlap with chunk %d: %q / %q",
				i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	cfg := Config{MaxTokens: 20, OverlapTokens: 5, Workers: 1}
	c := New(cfg, nil)

	text := strings.Join([]string{
		"alpha beta gamma one.",
		"alpha beta gamma two.",
		"alpha beta gamma three.",
		"alpha beta gamma four.",
		"alpha beta gamma five.",
		"alpha beta gamma six.",
	}, " ")

	first := c.Split(text)
	if len(first) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(first))
	}

	for run := 0; run < 5; run++ {
		again := c.Split(text)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d chunks, first run produced %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Errorf("run %d chunk %d differs: %q vs %q", run, i, again[i], first[i])
			}
		}
	}
}

func TestSplit_UnbrokenRun(t *testing.T) {
	cfg := Config{MaxTokens: 10, OverlapTokens: 0, Workers: 1}
	c := New(cfg, nil)

	text := strings.Repeat("x", 200)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected hard split into multiple chunks, got %d", len(chunks))
	}

	counter := NewEstimator()
	for i, chunk := range chunks {
		if counter.Count(chunk) > cfg.MaxTokens {
			t.Errorf("chunk %d has %d tokens, exceeds max %d",
				i, counter.Count(chunk), cfg.MaxTokens)
		}
	}
}

func TestProcess_AssignsSequentialIDs(t *testing.T) {
	cfg := Config{MaxTokens: 20, OverlapTokens: 5, Workers: 2}
	c := New(cfg, &fakeEmbedder{dim: 8})

	sentences := []string{
		"alpha beta gamma one.",
		"alpha beta gamma two.",
		"alpha beta gamma three.",
		"alpha beta gamma four.",
		"alpha beta gamma five.",
		"alpha beta gamma six.",
	}
	chunks, err := c.Process(context.Background(), strings.Join(sentences, " "))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.ChunkID != i+1 {
			t.Errorf("chunk %d has ID %d, want %d", i, chunk.ChunkID, i+1)
		}
		if chunk.Tokens <= 0 {
			t.Errorf("chunk %d has non-positive token count", i)
		}
		if len(chunk.Embedding) != 8 {
			t.Errorf("chunk %d has %d-dimensional embedding, want 8", i, len(chunk.Embedding))
		}
	}
}

func TestProcess_EmptyText(t *testing.T) {
	c := New(DefaultConfig(), &fakeEmbedder{dim: 8})

	chunks, err := c.Process(context.Background(), "")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if chunks != nil {
		t.Errorf("Process(\"\") = %v, want nil", chunks)
	}
}

func TestProcess_EmbedFailure(t *testing.T) {
	c := New(DefaultConfig(), &fakeEmbedder{dim: 8, fail: true})

	_, err := c.Process(context.Background(), "some text to embed")
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestProcess_NoEmbedder(t *testing.T) {
	c := New(DefaultConfig(), nil)

	chunks, err := c.Process(context.Background(), "some text without an embedder")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Embedding != nil {
		t.Errorf("expected nil embedding without an embedder")
	}
}

func TestEstimator_Count(t *testing.T) {
	counter := NewEstimator()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{"abcdefgh", 2},
		{strings.Repeat("x", 400), 100},
	}

	for _, tt := range tests {
		if got := counter.Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
