package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat [document-id]",
	Short: "Chat with a document in the terminal UI",
	Long: `Launch an interactive session for asking questions about one document.

Controls:
  Enter      - Ask the question
  PgUp/PgDn  - Scroll the transcript
  Esc/Ctrl+C - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := loadServices(cmd); err != nil {
		return err
	}
	if askService == nil {
		return fmt.Errorf("chat: %w", domain.ErrLLMUnavailable)
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	app, err := tui.NewApp(&tui.Ports{Document: documentService, Ask: askService}, doc)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
