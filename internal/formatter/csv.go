package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jomohunter/DueDil/internal/pipeline"
)

// csvFormatter formats answers as CSV, one row per question
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(result *pipeline.Result) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Question ID", "Question", "Answer"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range result.Answers {
		record := []string{
			fmt.Sprintf("%d", a.QuestionID),
			a.Question,
			a.Answer,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
