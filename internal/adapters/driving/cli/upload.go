package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Ingest a document",
	Long: `Extracts text from a PDF, DOCX or TXT file, splits it into chunks, embeds
them and stores an encrypted copy of the original. Prints the new document id.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := documentService.Upload(cmd.Context(), filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, result)
	}

	cmd.Printf("Uploaded %s\n\n", result.Filename)
	cmd.Printf("  Document ID: %s\n", result.DocumentID)
	cmd.Printf("  Chunks:      %d\n", result.ChunkCount)

	if len(result.SuggestedQuestions) > 0 {
		cmd.Println("\nSuggested questions:")
		for _, q := range result.SuggestedQuestions {
			cmd.Printf("  - %s\n", q)
		}
	}
	return nil
}
