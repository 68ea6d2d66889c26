package formatter

import (
	"encoding/json"

	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

// jsonFormatter formats a processing result as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(result *pipeline.Result) ([]byte, error) {
	output := &JSONOutput{
		Summary: createSummary(result),
		Answers: result.Answers,
	}
	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the top-level JSON report structure
type JSONOutput struct {
	Summary *SummaryOutput  `json:"summary"`
	Answers []answer.Answer `json:"answers"`
}

// SummaryOutput represents the summary section
type SummaryOutput struct {
	File             string `json:"file"`
	EmptyDocument    bool   `json:"empty_document"`
	Chunks           int    `json:"chunks"`
	Questions        int    `json:"questions"`
	Answered         int    `json:"answered"`
	Insufficient     int    `json:"insufficient"`
	FailedQuestions  int    `json:"failed_questions"`
	DroppedPositions int    `json:"dropped_positions,omitempty"`
	Duration         string `json:"duration"`
	AnswersPath      string `json:"answers_path"`
}

// createSummary derives the summary section from a processing result
func createSummary(result *pipeline.Result) *SummaryOutput {
	answered, insufficient := countAnswers(result.Answers)

	return &SummaryOutput{
		File:             result.File,
		EmptyDocument:    result.EmptyDocument,
		Chunks:           result.Chunks,
		Questions:        result.Questions,
		Answered:         answered,
		Insufficient:     insufficient,
		FailedQuestions:  result.FailedQuestions,
		DroppedPositions: result.DroppedPositions,
		Duration:         result.Duration.String(),
		AnswersPath:      result.AnswersPath,
	}
}
