// Package answer turns matched chunks into grounded answers. Every
// answer is generated from retrieved context only; when the model cannot
// support an answer from that context it must say so rather than guess.
package answer

import (
	"context"
	"strings"
	"sync"

	"github.com/yildizm/go-promptfmt"

	"github.com/jomohunter/DueDil/internal/ai"
	"github.com/jomohunter/DueDil/internal/logger"
	"github.com/jomohunter/DueDil/internal/matcher"
)

const (
	systemPrompt = "You are an expert due diligence analyst specialized in crypto funds.\n" +
		"Answer each question using ONLY the provided context. " +
		"Be concise and factual. If the answer isn't clearly supported, say: 'Insufficient data to answer.'"

	// InsufficientData is the sentinel the model is instructed to return
	// for unsupported answers.
	InsufficientData = "Insufficient data to answer."
)

// Answer is one generated answer, keyed by question ID.
type Answer struct {
	QuestionID int    `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// Config controls answer generation.
type Config struct {
	// Workers bounds concurrent completion requests
	Workers int

	// Temperature for completions, kept low for factual output
	Temperature float64

	// MaxTokens limits answer length
	MaxTokens int
}

// DefaultConfig returns the generation settings used by the pipeline.
func DefaultConfig() Config {
	return Config{
		Workers:     2,
		Temperature: 0.1,
		MaxTokens:   1024,
	}
}

// Synthesizer generates an answer per matched question.
type Synthesizer struct {
	cfg       Config
	completer ai.Completer
	retry     *ai.RetryConfig
	logger    *logger.Logger
}

// New creates a synthesizer.
func New(cfg Config, completer ai.Completer, log *logger.Logger) *Synthesizer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if log == nil {
		log = logger.New("answer", nil)
	}
	return &Synthesizer{
		cfg:       cfg,
		completer: completer,
		retry:     ai.DefaultRetryConfig(),
		logger:    log.WithComponent("answer"),
	}
}

// GenerateAll produces one answer per matched question, in input order.
// Questions are independent: a completion that still fails after retries
// yields a failure-sentinel answer instead of aborting the run, and
// questions that matched no chunks get the insufficient-data sentinel
// without spending a model call.
func (s *Synthesizer) GenerateAll(ctx context.Context, matched []matcher.QuestionMatches) ([]Answer, error) {
	if len(matched) == 0 {
		return nil, nil
	}

	answers := make([]Answer, len(matched))
	semaphore := make(chan struct{}, s.cfg.Workers)
	var wg sync.WaitGroup

	for i, qm := range matched {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, qm matcher.QuestionMatches) {
			defer wg.Done()
			defer func() { <-semaphore }()

			answers[i] = Answer{
				QuestionID: qm.QuestionID,
				Question:   qm.Question,
				Answer:     s.generateOne(ctx, qm),
			}
		}(i, qm)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

func (s *Synthesizer) generateOne(ctx context.Context, qm matcher.QuestionMatches) string {
	if len(qm.Matches) == 0 {
		return InsufficientData
	}

	prompt := buildPrompt(qm)

	req := &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	}

	resp, err := ai.CompleteWithRetry(ctx, s.completer, s.retry, req)
	if err != nil {
		s.logger.Warn("answer generation failed for question %d: %v", qm.QuestionID, err)
		return "[answer generation failed: " + err.Error() + "]"
	}

	answer := strings.TrimSpace(resp.Content)
	if answer == "" {
		return InsufficientData
	}
	return answer
}

func buildPrompt(qm matcher.QuestionMatches) *promptfmt.Prompt {
	texts := make([]string, 0, len(qm.Matches))
	for _, match := range qm.Matches {
		texts = append(texts, match.Text)
	}
	context := strings.Join(texts, "\n---\n")

	return promptfmt.New().
		System(systemPrompt).
		User("Context:\n%s\n\nQuestion: %s\nAnswer:", context, qm.Question).
		Build()
}
