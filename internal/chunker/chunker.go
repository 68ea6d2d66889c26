// Package chunker splits normalized document text into token-bounded,
// overlapping chunks and enriches each chunk with its embedding, token
// count and notable entities.
package chunker

import (
	"context"
	"strings"

	"github.com/jomohunter/DueDil/internal/ai"
)

// Chunk is one token-bounded slice of a document. ChunkID is 1-based and
// assigned in document order; it never changes once assigned, downstream
// artifacts reference chunks by it.
type Chunk struct {
	ChunkID   int       `json:"chunk_id"`
	Text      string    `json:"text"`
	Tokens    int       `json:"tokens"`
	Embedding []float32 `json:"embedding"`
	Entities  []string  `json:"important_entities"`
}

// Config controls chunk sizing and embedding concurrency.
type Config struct {
	// MaxTokens is the upper bound on tokens per chunk
	MaxTokens int

	// OverlapTokens is how many trailing tokens of a chunk are repeated
	// at the start of the next one
	OverlapTokens int

	// Workers bounds concurrent embedding requests
	Workers int
}

// DefaultConfig returns the chunk sizing used by the pipeline.
func DefaultConfig() Config {
	return Config{
		MaxTokens:     600,
		OverlapTokens: 50,
		Workers:       3,
	}
}

// Chunker produces enriched chunks from normalized text.
type Chunker struct {
	cfg       Config
	counter   TokenCounter
	embedder  ai.Embedder
	retry     *ai.RetryConfig
	extractor *EntityExtractor
}

// New creates a chunker. The embedder may be nil, in which case Process
// returns chunks without embeddings.
func New(cfg Config, embedder ai.Embedder) *Chunker {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 600
	}
	if cfg.OverlapTokens < 0 || cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = 0
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Chunker{
		cfg:       cfg,
		counter:   NewEstimator(),
		embedder:  embedder,
		retry:     ai.DefaultRetryConfig(),
		extractor: NewEntityExtractor(),
	}
}

// separators are tried in order, largest structural boundary first.
var separators = []string{"\n\n", "\n", ". ", " "}

// Split divides text into chunks of at most MaxTokens tokens, breaking at
// the largest boundary that fits and carrying OverlapTokens of trailing
// context into each following chunk.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.merge(c.split(text, separators))
}

// Process splits text and enriches every chunk with its embedding, token
// count and entities. Chunk IDs are assigned 1-based in document order.
func (c *Chunker) Process(ctx context.Context, text string) ([]Chunk, error) {
	texts := c.Split(text)
	if len(texts) == 0 {
		return nil, nil
	}

	var vectors [][]float32
	if c.embedder != nil {
		var err error
		vectors, err = ai.EmbedBatch(ctx, c.embedder, c.retry, texts, c.cfg.Workers)
		if err != nil {
			return nil, err
		}
	}

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{
			ChunkID:  i + 1,
			Text:     t,
			Tokens:   c.counter.Count(t),
			Entities: c.extractor.Extract(t),
		}
		if vectors != nil {
			chunks[i].Embedding = vectors[i]
		}
	}

	return chunks, nil
}

// split recursively breaks text into pieces that each fit in MaxTokens,
// trying coarser separators before finer ones.
func (c *Chunker) split(text string, seps []string) []string {
	if c.counter.Count(text) <= c.cfg.MaxTokens {
		return []string{text}
	}

	if len(seps) == 0 {
		return c.hardSplit(text)
	}

	sep := seps[0]
	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		return c.split(text, seps[1:])
	}

	var pieces []string
	for i, part := range parts {
		if sep == ". " && i < len(parts)-1 {
			part += "."
		}
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pieces = append(pieces, c.split(part, seps[1:])...)
	}
	return pieces
}

// hardSplit cuts text by raw length when no separator is left. Only
// pathological inputs (one unbroken run) reach this.
func (c *Chunker) hardSplit(text string) []string {
	window := c.cfg.MaxTokens * 4
	if window < 1 {
		window = 1
	}
	var pieces []string
	for len(text) > 0 {
		end := window
		if end > len(text) {
			end = len(text)
		}
		pieces = append(pieces, text[:end])
		text = text[end:]
	}
	return pieces
}

// merge joins pieces into chunks up to MaxTokens, seeding each new chunk
// with the overlap tail of the previous one.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var cur []string

	for _, piece := range pieces {
		if len(cur) > 0 {
			candidate := strings.Join(cur, " ") + " " + piece
			if c.counter.Count(candidate) > c.cfg.MaxTokens {
				chunks = append(chunks, strings.Join(cur, " "))
				cur = c.overlapTail(cur)
			}
		}
		cur = append(cur, piece)
	}

	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// overlapTail returns the trailing pieces that fit in OverlapTokens.
func (c *Chunker) overlapTail(pieces []string) []string {
	if c.cfg.OverlapTokens == 0 {
		return nil
	}

	var tail []string
	tokens := 0
	for i := len(pieces) - 1; i >= 0; i-- {
		t := c.counter.Count(pieces[i])
		if tokens+t > c.cfg.OverlapTokens {
			break
		}
		tail = append([]string{pieces[i]}, tail...)
		tokens += t
	}
	return tail
}
