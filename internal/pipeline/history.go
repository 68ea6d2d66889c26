package pipeline

import (
	"encoding/json"
	"os"
	"time"
)

// HistoryEntry records one processed upload and where its answers live.
type HistoryEntry struct {
	File        string    `json:"file"`
	Answers     string    `json:"answers"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// LoadHistory reads the upload history. A missing file is an empty
// history, not an error.
func LoadHistory(path string) ([]HistoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &PersistError{Path: path, Err: err}
	}

	var history []HistoryEntry
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, &PersistError{Path: path, Err: err}
	}
	return history, nil
}

// AppendHistory adds an entry unless the same file/answers pair is
// already recorded, so re-processing a document does not grow the
// history.
func AppendHistory(path string, entry HistoryEntry) error {
	history, err := LoadHistory(path)
	if err != nil {
		return err
	}

	for _, existing := range history {
		if existing.File == entry.File && existing.Answers == entry.Answers {
			return nil
		}
	}

	history = append(history, entry)
	return writeJSONAtomic(path, history)
}
