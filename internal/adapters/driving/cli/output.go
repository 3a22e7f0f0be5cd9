package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

var (
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	labelStyle = lipgloss.NewStyle().Bold(true)
)

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// style renders s with st only when writing to a terminal.
func style(cmd *cobra.Command, st lipgloss.Style, s string) string {
	if !isTerminal(cmd.OutOrStdout()) {
		return s
	}
	return st.Render(s)
}

func confidenceBadge(confidence float64) string {
	return domain.BandFor(confidence).Badge()
}

func confidenceStyle(confidence float64) lipgloss.Style {
	switch domain.BandFor(confidence) {
	case domain.BandHigh:
		return goodStyle
	case domain.BandMedium:
		return warnStyle
	default:
		return badStyle
	}
}

// statusLine formats the badge, guardrail label and confidence of an answer.
func statusLine(cmd *cobra.Command, status domain.GuardrailStatus, confidence float64) string {
	line := fmt.Sprintf("%s %s (confidence %.0f%%)", confidenceBadge(confidence), status.Label(), confidence*100)
	return style(cmd, confidenceStyle(confidence), line)
}

// snippet flattens whitespace and shortens text for one-line display.
func snippet(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(text), " ")
	r := []rune(flat)
	if len(r) <= maxRunes {
		return flat
	}
	return string(r[:maxRunes-1]) + "…"
}
