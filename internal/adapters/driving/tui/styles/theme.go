// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks high confidence.
	Success lipgloss.Color

	// Warning marks medium confidence.
	Warning lipgloss.Color

	// Error marks low confidence and failures.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the header.
	Title lipgloss.Style

	// Question style for the user's questions in the transcript.
	Question lipgloss.Style

	// Answer style for model answers.
	Answer lipgloss.Style

	// Source style for retrieved passages.
	Source lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// High, Medium and Low colour confidence badges.
	High   lipgloss.Style
	Medium lipgloss.Style
	Low    lipgloss.Style

	// InputField style for the question input.
	InputField lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Question: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Answer: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Source: lipgloss.NewStyle().
			Foreground(theme.Muted).
			PaddingLeft(2),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		High: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Medium: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Low: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Band returns the style for a confidence band.
func (s *Styles) Band(b domain.ConfidenceBand) lipgloss.Style {
	switch b {
	case domain.BandHigh:
		return s.High
	case domain.BandMedium:
		return s.Medium
	default:
		return s.Low
	}
}
