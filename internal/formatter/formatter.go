package formatter

import (
	"fmt"

	"github.com/jomohunter/DueDil/internal/pipeline"
)

// Formatter defines the interface for report output formatting
type Formatter interface {
	Format(result *pipeline.Result) ([]byte, error)
}

// New returns the formatter for the given format name.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	case "text", "terminal", "":
		return NewTerminal(color), nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
