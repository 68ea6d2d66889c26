// Package pipeline runs a document end to end: extract, normalize,
// chunk and embed, index, match the question corpus, synthesize
// answers, and persist every artifact along the way.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jomohunter/DueDil/internal/ai"
	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/chunker"
	"github.com/jomohunter/DueDil/internal/config"
	"github.com/jomohunter/DueDil/internal/extract"
	"github.com/jomohunter/DueDil/internal/logger"
	"github.com/jomohunter/DueDil/internal/matcher"
	"github.com/jomohunter/DueDil/internal/normalize"
	"github.com/jomohunter/DueDil/internal/vectorindex"
)

// Result summarizes one processed document.
type Result struct {
	File             string          `json:"file"`
	EmptyDocument    bool            `json:"empty_document"`
	Chunks           int             `json:"chunks"`
	Questions        int             `json:"questions"`
	FailedQuestions  int             `json:"failed_questions"`
	DroppedPositions int             `json:"dropped_positions"`
	Answers          []answer.Answer `json:"answers"`
	IndexPath        string          `json:"index_path"`
	ManifestPath     string          `json:"manifest_path"`
	ChunksPath       string          `json:"chunks_path"`
	MatchedPath      string          `json:"matched_path"`
	AnswersPath      string          `json:"answers_path"`
	Duration         time.Duration   `json:"duration"`
}

// Pipeline wires the stages together. The provider is shared: chunks and
// questions must be embedded by the same model or the distances mean
// nothing.
type Pipeline struct {
	cfg         *config.Config
	provider    ai.Provider
	extractor   *extract.Service
	normalizer  *normalize.Normalizer
	chunker     *chunker.Chunker
	matcher     *matcher.Matcher
	synthesizer *answer.Synthesizer
	logger      *logger.Logger
}

// New builds a pipeline from configuration and a ready provider.
func New(cfg *config.Config, provider ai.Provider, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.New("pipeline", nil)
	}
	plog := log.WithComponent("pipeline")

	extractor := extract.NewService(extract.Config{
		OCREndpoint: cfg.Extract.OCREndpoint,
		OCRTimeout:  cfg.Extract.OCRTimeout,
		MaxFileSize: cfg.Extract.MaxFileSize,
	})

	normalizer := normalize.New(normalize.Options{
		StripTOC:   cfg.Normalize.StripTOC,
		RedactPII:  cfg.Normalize.RedactPII,
		DropTables: !cfg.Normalize.KeepTables,
	})

	chk := chunker.New(chunker.Config{
		MaxTokens:     cfg.Chunking.MaxTokens,
		OverlapTokens: cfg.Chunking.OverlapTokens,
		Workers:       cfg.Chunking.Workers,
	}, provider)

	mtc := matcher.New(matcher.Config{
		TopK:    cfg.Matching.TopK,
		Workers: cfg.Matching.Workers,
	}, provider, log)

	syn := answer.New(answer.Config{
		Workers:     cfg.Answers.Workers,
		Temperature: cfg.Answers.Temperature,
		MaxTokens:   cfg.Answers.MaxTokens,
	}, provider, log)

	return &Pipeline{
		cfg:         cfg,
		provider:    provider,
		extractor:   extractor,
		normalizer:  normalizer,
		chunker:     chk,
		matcher:     mtc,
		synthesizer: syn,
		logger:      plog,
	}
}

// Supports reports whether path has a processable extension.
func (p *Pipeline) Supports(path string) bool {
	return p.extractor.Supports(path)
}

// ProcessFile runs the full pipeline over one document. Artifacts are
// written as stages complete; the answers file and history entry are
// written even for empty documents, so a processed upload always leaves
// a record.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	filename := filepath.Base(path)

	result := &Result{
		File:        filename,
		ChunksPath:  filepath.Join(p.cfg.Storage.TempDir, "chunks.json"),
		MatchedPath: filepath.Join(p.cfg.Storage.TempDir, "matched_"+filename+".json"),
		AnswersPath: filepath.Join(p.cfg.Storage.AnswerDir, "answers_"+filename+".json"),
	}

	questions, err := matcher.LoadQuestions(p.cfg.Matching.QuestionsPath)
	if err != nil {
		return nil, err
	}
	result.Questions = len(questions)

	p.logger.Info("extracting %s", filename)
	raw, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	text := p.normalizer.Normalize(raw)
	if text == "" {
		p.logger.Warn("%s contains no extractable text", filename)
		return p.finishEmpty(result, questions, start)
	}

	p.logger.Info("chunking and embedding %s", filename)
	chunks, err := p.chunker.Process(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return p.finishEmpty(result, questions, start)
	}
	result.Chunks = len(chunks)

	if err := SaveChunks(result.ChunksPath, chunks); err != nil {
		return nil, err
	}

	index, manifest, err := buildIndex(filename, p.cfg.AI.EmbedModel, chunks)
	if err != nil {
		return nil, err
	}

	result.IndexPath = filepath.Join(p.cfg.Storage.DataDir, "index_"+filename+".ddvx")
	result.ManifestPath = filepath.Join(p.cfg.Storage.DataDir, "manifest_"+filename+".json")

	if err := index.Save(result.IndexPath); err != nil {
		return nil, err
	}
	if err := manifest.Save(result.ManifestPath); err != nil {
		return nil, err
	}
	p.logger.InfoWithFields("index persisted", []logger.Field{
		logger.F("vectors", index.Len()),
		logger.F("dimension", index.Dimension()),
	})

	p.logger.Info("matching %d questions", len(questions))
	matched, stats, err := p.matcher.MatchAll(ctx, questions, index, manifest)
	if err != nil {
		return nil, err
	}
	result.FailedQuestions = stats.Failed
	result.DroppedPositions = stats.DroppedPositions

	if err := SaveMatched(result.MatchedPath, matched); err != nil {
		return nil, err
	}

	p.logger.Info("generating answers")
	answers, err := p.synthesizer.GenerateAll(ctx, matched)
	if err != nil {
		return nil, err
	}
	result.Answers = answers

	if err := SaveAnswers(result.AnswersPath, answers); err != nil {
		return nil, err
	}

	if err := p.recordHistory(result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// finishEmpty completes a run for a document with no usable text: every
// question gets the insufficient-data sentinel and the upload is still
// recorded.
func (p *Pipeline) finishEmpty(result *Result, questions []matcher.Question, start time.Time) (*Result, error) {
	result.EmptyDocument = true

	answers := make([]answer.Answer, len(questions))
	for i, q := range questions {
		answers[i] = answer.Answer{
			QuestionID: q.ID,
			Question:   q.Question,
			Answer:     answer.InsufficientData,
		}
	}
	result.Answers = answers

	if err := SaveAnswers(result.AnswersPath, answers); err != nil {
		return nil, err
	}
	if err := p.recordHistory(result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (p *Pipeline) recordHistory(result *Result) error {
	return AppendHistory(p.cfg.Storage.HistoryPath, HistoryEntry{
		File:        result.File,
		Answers:     result.AnswersPath,
		ProcessedAt: time.Now().UTC(),
	})
}

// buildIndex creates a fresh index and manifest from enriched chunks.
// The index is per-document: stale vectors from a previous upload must
// never answer for a new one.
func buildIndex(source, model string, chunks []chunker.Chunk) (*vectorindex.FlatIndex, *vectorindex.Manifest, error) {
	index := vectorindex.New()
	manifest := &vectorindex.Manifest{
		Source:  source,
		Model:   model,
		Entries: make([]vectorindex.ManifestEntry, len(chunks)),
	}

	for i, chunk := range chunks {
		if err := index.Add(chunk.Embedding); err != nil {
			return nil, nil, fmt.Errorf("chunk %d: %w", chunk.ChunkID, err)
		}
		manifest.Entries[i] = vectorindex.ManifestEntry{
			ChunkID: chunk.ChunkID,
			Text:    chunk.Text,
		}
	}

	if err := manifest.Validate(index); err != nil {
		return nil, nil, err
	}

	return index, manifest, nil
}
