package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [document-id] [question]",
	Short: "Ask a question about a document",
	Long: `Answers a question using only the retrieved passages of the document.

The answer is reported with a confidence badge and guardrail status:
  ● Grounded        combined confidence at or above the threshold
  ◐ Low Confidence  an answer was produced but is weakly supported
  ○ Refused         no passage was similar enough; the model was not asked
  ○ No Context      the document has no indexed passages`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if askService == nil {
		return fmt.Errorf("ask: %w", domain.ErrLLMUnavailable)
	}

	docID := args[0]
	question := strings.Join(args[1:], " ")

	answer, err := askService.Ask(cmd.Context(), docID, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, answer)
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Answer)
	cmd.Println()
	cmd.Println(statusLine(cmd, answer.GuardrailStatus, answer.Confidence))

	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println(style(cmd, labelStyle, "Sources:"))
	for i, s := range answer.Sources {
		cmd.Printf("  [%d] %s %s\n", i+1,
			style(cmd, dimStyle, fmt.Sprintf("(%.3f)", s.SimilarityScore)),
			snippet(s.Text, 160))
	}
}
