package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List ingested documents, view their details and text, or recover the original file.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentOriginalCmd = &cobra.Command{
	Use:   "original [doc-id]",
	Short: "Decrypt and save the original file",
	Long: `Decrypts the stored original of a document and writes it to disk.
By default the file is written to the current directory under its upload name.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentOriginal,
}

var (
	originalOutput string
	originalForce  bool
)

func init() {
	documentOriginalCmd.Flags().StringVarP(&originalOutput, "output", "o", "", "path to write the original to")
	documentOriginalCmd.Flags().BoolVarP(&originalForce, "force", "f", false, "overwrite an existing file")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentOriginalCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found. Use 'docintel upload <file>' to add one.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:    %s (%s)\n", docs[i].Filename, docs[i].Format)
		cmd.Printf("    Chunks:  %d\n", docs[i].ChunkCount)
		if !docs[i].CreatedAt.IsZero() {
			cmd.Printf("    Created: %s\n", docs[i].CreatedAt.Local().Format(timeLayout))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if jsonOutput {
		info := *doc
		info.FullText = ""
		return printJSON(cmd, info)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	cmd.Printf("  Format:   %s\n", doc.Format)
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("  Length:   %d characters\n", len([]rune(doc.FullText)))
	if !doc.CreatedAt.IsZero() {
		cmd.Printf("  Created:  %s\n", doc.CreatedAt.Local().Format(timeLayout))
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	content, err := documentService.Content(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd, map[string]string{"document_id": args[0], "content": content})
	}

	cmd.Println(content)
	return nil
}

func runDocumentOriginal(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}

	docID := args[0]
	path := originalOutput
	if path == "" {
		doc, err := documentService.Get(cmd.Context(), docID)
		if err != nil {
			return fmt.Errorf("failed to get document: %w", err)
		}
		path = doc.Filename
	}

	if !originalForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	data, err := documentService.Original(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("failed to decrypt original: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	cmd.Printf("Wrote %d bytes to %s\n", len(data), path)
	return nil
}
