package formatter

import (
	"strings"

	"github.com/jomohunter/DueDil/internal/answer"
)

// countAnswers splits answers into answered and insufficient-data counts.
// Failure placeholders count as neither.
func countAnswers(answers []answer.Answer) (answered, insufficient int) {
	for _, a := range answers {
		switch {
		case a.Answer == answer.InsufficientData:
			insufficient++
		case strings.HasPrefix(a.Answer, "[answer generation failed"):
			// skip
		default:
			answered++
		}
	}
	return answered, insufficient
}

// truncate shortens s to max runes with an ellipsis for display.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
