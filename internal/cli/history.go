package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jomohunter/DueDil/internal/answer"
	"github.com/jomohunter/DueDil/internal/pipeline"
)

var (
	historyFormat  string
	historyAnswers bool
)

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show processed document history",
		Long: `List every document the pipeline has processed, with the location of
its answers artifact.

Examples:
  duedil history
  duedil history --format json
  duedil history --answers`,
		RunE: runHistory,
	}

	cmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVarP(&historyAnswers, "answers", "a", false, "print the stored answers for each document")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	history, err := pipeline.LoadHistory(cfg.Storage.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	switch historyFormat {
	case "json":
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		fmt.Println(string(data))
	case "text":
		if len(history) == 0 {
			fmt.Println("No documents processed yet.")
			return nil
		}
		fmt.Println(styled(headingStyle, fmt.Sprintf("%d document(s) processed:", len(history))))
		fmt.Println()
		for i, entry := range history {
			fmt.Printf("%d. %s\n", i+1, entry.File)
			fmt.Printf("   %s\n", styled(faintStyle, "answers: "+entry.Answers))
			if !entry.ProcessedAt.IsZero() {
				fmt.Printf("   %s\n", styled(faintStyle, "at:      "+entry.ProcessedAt.Format("2006-01-02 15:04:05 MST")))
			}
			if historyAnswers {
				printStoredAnswers(entry.Answers)
			}
		}
	default:
		return fmt.Errorf("unsupported format: %s (use text or json)", historyFormat)
	}

	return nil
}

// printStoredAnswers re-prints the answers artifact for one document.
// A missing or unreadable artifact is reported, not fatal: the history
// outlives its files.
func printStoredAnswers(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("   %s\n", styled(warnStyle, fmt.Sprintf("answers unavailable: %v", err)))
		return
	}

	var answers []answer.Answer
	if err := json.Unmarshal(data, &answers); err != nil {
		fmt.Printf("   %s\n", styled(warnStyle, fmt.Sprintf("answers unreadable: %v", err)))
		return
	}

	for _, a := range answers {
		fmt.Printf("   Q%d. %s\n", a.QuestionID, a.Question)
		fmt.Printf("       %s\n", a.Answer)
	}
}
