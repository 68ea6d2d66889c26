package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/chunker"
	"github.com/jomohunter/DueDil/internal/matcher"
)

// ChunkRecord is the chunk artifact entry: just enough to resolve a
// chunk ID back to its text. Embeddings live in the index file, not
// here.
type ChunkRecord struct {
	ChunkID int    `json:"chunk_id"`
	Text    string `json:"text"`
}

// PersistError wraps artifact write failures.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// writeJSONAtomic marshals v and writes it to path via a same-directory
// temp file and rename. Readers never observe a partial artifact.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistError{Path: path, Err: err}
	}

	return nil
}

// SaveChunks writes the chunk artifact for a document.
func SaveChunks(path string, chunks []chunker.Chunk) error {
	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = ChunkRecord{ChunkID: c.ChunkID, Text: c.Text}
	}
	return writeJSONAtomic(path, records)
}

// SaveMatched writes the per-question retrieval artifact.
func SaveMatched(path string, matched []matcher.QuestionMatches) error {
	return writeJSONAtomic(path, matched)
}

// SaveAnswers writes the final answers artifact.
func SaveAnswers(path string, answers []answer.Answer) error {
	return writeJSONAtomic(path, answers)
}
