package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jomohunter/DueDil/internal/formatter"
	"github.com/jomohunter/DueDil/internal/logger"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

var (
	processFormat     string
	processQuestions  string
	processTimeout    time.Duration
	processOutputFile string
)

func newProcessCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Process documents and answer the question corpus",
		Long: `Run the full pipeline over one or more documents: extract text,
normalize it, chunk and embed, build the vector index, match every
question against the document, and synthesize grounded answers.

Supported formats: pdf, docx, xlsx, csv, and jpg/png when an OCR
endpoint is configured.

Examples:
  duedil process fund_terms.pdf
  duedil process --questions ./my_questions.json report.docx
  duedil process -o json --output-file report.json holdings.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().StringVarP(&processQuestions, "questions", "q", "", "question corpus file (overrides config)")
	cmd.Flags().DurationVar(&processTimeout, "timeout", 10*time.Minute, "processing timeout per document")
	cmd.Flags().StringVar(&processOutputFile, "output-file", "", "save report to file instead of stdout")
	cmd.Flags().StringVarP(&processFormat, "format", "f", "", "report format (text, json, markdown, csv)")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	if processQuestions != "" {
		cfg.Matching.QuestionsPath = processQuestions
	}

	format := processFormat
	if format == "" {
		format = getOutputFormat()
	}
	fmtr, err := formatter.New(format, colorEnabled())
	if err != nil {
		return err
	}

	provider, err := createProvider(&cfg.AI)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer func() {
		if err := provider.Close(); err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close provider: %v\n", err)
		}
	}()

	log := logger.NewWithCallback("cli", isVerbose)
	p := pipeline.New(cfg, provider, log)

	var reports []string
	for _, arg := range args {
		path := filepath.Clean(arg)
		if !p.Supports(path) {
			return fmt.Errorf("unsupported file: %s", path)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), processTimeout)
		result, err := p.ProcessFile(ctx, path)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}

		report, err := fmtr.Format(result)
		if err != nil {
			return fmt.Errorf("failed to format report: %w", err)
		}
		reports = append(reports, string(report))
	}

	output := strings.Join(reports, "\n")
	if processOutputFile != "" {
		return writeOutputToFile(output, processOutputFile)
	}
	fmt.Print(output)
	return nil
}

// writeOutputToFile saves report output, creating parent directories as
// needed.
func writeOutputToFile(content, filename string) error {
	cleanPath := filepath.Clean(filename)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(cleanPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Report saved to: %s\n", cleanPath)
	}
	return nil
}
