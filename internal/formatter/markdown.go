package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

// markdownFormatter formats a processing result as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(result *pipeline.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Due Diligence Report\n\n")
	fmt.Fprintf(&b, "Document: `%s`\n\n", result.File)
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	f.writeSummaryTable(&b, result)
	f.writeAnswerSections(&b, result.Answers)

	return []byte(b.String()), nil
}

// writeSummaryTable writes the processing summary table
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, result *pipeline.Result) {
	answered, insufficient := countAnswers(result.Answers)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Chunks Indexed | %d |\n", result.Chunks)
	fmt.Fprintf(b, "| Questions | %d |\n", result.Questions)
	fmt.Fprintf(b, "| Answered | %d |\n", answered)
	fmt.Fprintf(b, "| Insufficient Data | %d |\n", insufficient)
	fmt.Fprintf(b, "| Failed | %d |\n", result.FailedQuestions)
	fmt.Fprintf(b, "| Duration | %s |\n\n", result.Duration.String())

	if result.EmptyDocument {
		b.WriteString("> The document contained no extractable text.\n\n")
	}
}

// writeAnswerSections writes one section per question
func (f *markdownFormatter) writeAnswerSections(b *strings.Builder, answers []answer.Answer) {
	if len(answers) == 0 {
		return
	}

	b.WriteString("## Answers\n\n")
	for _, a := range answers {
		fmt.Fprintf(b, "### Q%d. %s\n\n", a.QuestionID, a.Question)
		if a.Answer == answer.InsufficientData {
			fmt.Fprintf(b, "*%s*\n\n", a.Answer)
			continue
		}
		b.WriteString(a.Answer + "\n\n")
	}
}
