// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
)

const minInputWidth = 20

// QuestionInput wraps a bubbles textinput for typing questions.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewQuestionInput creates a focused question input.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about this document..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 50

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the input with its label.
func (q *QuestionInput) View() string {
	label := q.styles.Title.Render("Ask: ")
	field := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// Question returns the trimmed input value.
func (q *QuestionInput) Question() string {
	return strings.TrimSpace(q.textinput.Value())
}

// SetValue sets the input value and moves the cursor to the end.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
	q.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the total width of the input including its label.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	// Account for label, border and padding
	q.textinput.Width = max(width-12, minInputWidth)
}

// Width returns the current width.
func (q *QuestionInput) Width() int {
	return q.width
}

// Reset clears the input.
func (q *QuestionInput) Reset() {
	q.textinput.Reset()
}
