package matcher

import (
	"context"
	"errors"
	"sync"

	"github.com/jomohunter/DueDil/internal/ai"
	"github.com/jomohunter/DueDil/internal/logger"
	"github.com/jomohunter/DueDil/internal/vectorindex"
)

// Match is one retrieved chunk for a question. Score is squared L2
// distance, lower is closer.
type Match struct {
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float32 `json:"score"`
}

// QuestionMatches holds the retrieval result for one question, in corpus
// order.
type QuestionMatches struct {
	QuestionID int     `json:"question_id"`
	Question   string  `json:"question"`
	Matches    []Match `json:"matches"`
}

// Stats summarizes a matching run.
type Stats struct {
	// Questions is the number of questions processed
	Questions int

	// Failed counts questions whose embedding failed after retries;
	// their entries carry no matches
	Failed int

	// DroppedPositions counts search hits whose position had no
	// manifest entry. Always zero for a validated manifest.
	DroppedPositions int
}

// Config controls retrieval.
type Config struct {
	// TopK is how many chunks to retrieve per question
	TopK int

	// Workers bounds concurrent question embeddings
	Workers int
}

// DefaultConfig returns the retrieval settings used by the pipeline.
func DefaultConfig() Config {
	return Config{
		TopK:    5,
		Workers: 4,
	}
}

// Matcher embeds questions and searches the document index for each one.
type Matcher struct {
	cfg      Config
	embedder ai.Embedder
	retry    *ai.RetryConfig
	logger   *logger.Logger
}

// New creates a matcher. The embedder must be the same one that embedded
// the document chunks.
func New(cfg Config, embedder ai.Embedder, log *logger.Logger) *Matcher {
	if cfg.TopK < 1 {
		cfg.TopK = 5
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = logger.New("matcher", nil)
	}
	return &Matcher{
		cfg:      cfg,
		embedder: embedder,
		retry:    ai.DefaultRetryConfig(),
		logger:   log.WithComponent("matcher"),
	}
}

// MatchAll retrieves the top chunks for every question. Questions are
// independent: one question's embedding failure does not stop the
// others, its entry just comes back with no matches and Stats.Failed is
// bumped. A query whose dimension disagrees with the index aborts the
// whole run, because every later query would hit the same wall.
func (m *Matcher) MatchAll(ctx context.Context, questions []Question, ix *vectorindex.FlatIndex, manifest *vectorindex.Manifest) ([]QuestionMatches, *Stats, error) {
	results := make([]QuestionMatches, len(questions))
	stats := &Stats{Questions: len(questions)}

	var mu sync.Mutex
	var fatal error

	semaphore := make(chan struct{}, m.cfg.Workers)
	var wg sync.WaitGroup

	for i, question := range questions {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, q Question) {
			defer wg.Done()
			defer func() { <-semaphore }()

			mu.Lock()
			aborted := fatal != nil
			mu.Unlock()
			if aborted {
				return
			}

			entry := QuestionMatches{QuestionID: q.ID, Question: q.Question}

			matches, dropped, err := m.matchOne(ctx, q, ix, manifest)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				entry.Matches = matches
				stats.DroppedPositions += dropped
			case isDimensionMismatch(err) || errors.Is(err, context.Canceled):
				if fatal == nil {
					fatal = err
				}
			default:
				stats.Failed++
				m.logger.Warn("question %d failed: %v", q.ID, err)
			}

			results[i] = entry
		}(i, question)
	}

	wg.Wait()

	if fatal != nil {
		return nil, nil, fatal
	}

	return results, stats, nil
}

func (m *Matcher) matchOne(ctx context.Context, q Question, ix *vectorindex.FlatIndex, manifest *vectorindex.Manifest) ([]Match, int, error) {
	vector, err := ai.EmbedWithRetry(ctx, m.embedder, m.retry, q.Question)
	if err != nil {
		return nil, 0, err
	}

	hits, err := ix.Search(vector, m.cfg.TopK)
	if err != nil {
		return nil, 0, err
	}

	var matches []Match
	dropped := 0
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(manifest.Entries) {
			dropped++
			continue
		}
		entry := manifest.Entries[hit.Position]
		matches = append(matches, Match{
			ChunkID: entry.ChunkID,
			Text:    entry.Text,
			Score:   hit.Distance,
		})
	}

	return matches, dropped, nil
}

func isDimensionMismatch(err error) bool {
	var mismatch *vectorindex.DimensionMismatchError
	return errors.As(err, &mismatch)
}
