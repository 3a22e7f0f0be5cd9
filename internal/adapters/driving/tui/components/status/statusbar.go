// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// State represents the current chat state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays the document, the last verdict and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	state    State
	document string
	message  string
	last     *domain.Answer
	asked    int
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	doc := ""
	if s.document != "" {
		doc = s.styles.Title.Render(s.document) + "  "
	}

	switch s.state {
	case StateThinking:
		return doc + s.styles.Muted.Render("Thinking...")
	case StateError:
		if s.message != "" {
			return doc + s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return doc + s.styles.Error.Render("Error")
	case StateAnswered:
		if s.last != nil {
			band := domain.BandFor(s.last.Confidence)
			verdict := fmt.Sprintf("%s %s %.0f%%", band.Badge(), s.last.GuardrailStatus.Label(), s.last.Confidence*100)
			return doc + s.styles.Band(band).Render(verdict) +
				s.styles.Muted.Render(fmt.Sprintf("  (%d asked)", s.asked))
		}
	case StateReady:
	}
	return doc + s.styles.Muted.Render("Ready")
}

func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetDocument sets the document name shown on the left.
func (s *Bar) SetDocument(name string) {
	s.document = name
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetAnswer records the latest answer and switches to the answered state.
func (s *Bar) SetAnswer(a *domain.Answer) {
	s.last = a
	s.asked++
	s.state = StateAnswered
	s.message = ""
}

// Asked returns how many questions have been answered.
func (s *Bar) Asked() int {
	return s.asked
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
