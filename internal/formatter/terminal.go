package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(result *pipeline.Result) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b, result.File)
	f.writeStatistics(&b, result)

	if result.EmptyDocument {
		symbol := termfmt.GetEmoji("warning", f.opts)
		b.WriteString(symbol + " Document contained no extractable text.\n\n")
	}

	f.writeAnswers(&b, result.Answers)

	return []byte(b.String()), nil
}

// writeHeader writes the boxed report header
func (f *terminalFormatter) writeHeader(b *strings.Builder, file string) {
	header := "Due Diligence Report: " + file
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeStatistics writes the processing summary with tree-style formatting
func (f *terminalFormatter) writeStatistics(b *strings.Builder, result *pipeline.Result) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	answered, insufficient := countAnswers(result.Answers)

	items := []termfmt.TreeItem{
		{Label: "Chunks Indexed", Value: fmt.Sprintf("%d", result.Chunks)},
		{Label: "Questions", Value: fmt.Sprintf("%d", result.Questions)},
		{Label: "Answered", Value: fmt.Sprintf("%d", answered)},
		{Label: "Insufficient Data", Value: fmt.Sprintf("%d", insufficient)},
	}
	if result.FailedQuestions > 0 {
		items = append(items, termfmt.TreeItem{
			Label: "Failed", Value: fmt.Sprintf("%d", result.FailedQuestions),
		})
	}
	items = append(items, termfmt.TreeItem{
		Label: "Duration", Value: result.Duration.String(), Last: true,
	})

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeAnswers writes every question with its answer
func (f *terminalFormatter) writeAnswers(b *strings.Builder, answers []answer.Answer) {
	if len(answers) == 0 {
		return
	}

	symbol := termfmt.GetEmoji("summary", f.opts)
	b.WriteString(symbol + " Answers\n")

	items := make([]termfmt.TreeItem, 0, len(answers))
	for i, a := range answers {
		marker := termfmt.GetEmoji("info", f.opts)
		if a.Answer == answer.InsufficientData {
			marker = termfmt.GetEmoji("warning", f.opts)
		}

		item := termfmt.TreeItem{
			Label: fmt.Sprintf("%s Q%d", marker, a.QuestionID),
			Value: a.Question,
			Children: []termfmt.TreeItem{
				{Label: truncate(a.Answer, 200), Value: ""},
			},
			Last: i == len(answers)-1,
		}
		items = append(items, item)
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}
