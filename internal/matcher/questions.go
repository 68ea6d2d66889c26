// Package matcher retrieves, for every question in the due diligence
// corpus, the document chunks most likely to contain its answer.
package matcher

import (
	"encoding/json"
	"fmt"
	"os"
)

// Question is one entry of the question corpus.
type Question struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// LoadQuestions reads the question corpus from a JSON file. IDs must be
// positive and unique; the corpus is rejected otherwise, since answers
// are keyed by question ID.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions file: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions file %s: %w", path, err)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("questions file %s is empty", path)
	}

	seen := make(map[int]struct{}, len(questions))
	for i, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("question %d: id %d is not positive", i, q.ID)
		}
		if q.Question == "" {
			return nil, fmt.Errorf("question %d: empty question text", i)
		}
		if _, ok := seen[q.ID]; ok {
			return nil, fmt.Errorf("question %d: duplicate id %d", i, q.ID)
		}
		seen[q.ID] = struct{}{}
	}

	return questions, nil
}
