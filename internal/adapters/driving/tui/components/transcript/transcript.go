// Package transcript renders the scrolling question and answer history.
package transcript

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

const maxSourceRunes = 240

// Entry is one exchange in the transcript.
type Entry struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// Pending reports whether the entry is still waiting for an answer.
func (e Entry) Pending() bool {
	return e.Answer == nil && e.Err == nil
}

// Transcript is a viewport over the chat history.
type Transcript struct {
	styles   *styles.Styles
	viewport viewport.Model
	entries  []Entry
	intro    string
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	t := &Transcript{
		styles:   s,
		viewport: viewport.New(80, 20),
	}
	t.render()
	return t
}

// SetSize resizes the viewport.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = max(height, 1)
	t.render()
}

// SetIntro sets the text shown before the first question.
func (t *Transcript) SetIntro(intro string) {
	t.intro = intro
	t.render()
}

// Ask appends a pending question.
func (t *Transcript) Ask(question string) {
	t.entries = append(t.entries, Entry{Question: question})
	t.render()
}

// Resolve completes the most recent pending entry for question.
func (t *Transcript) Resolve(question string, answer *domain.Answer, err error) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Pending() && t.entries[i].Question == question {
			t.entries[i].Answer = answer
			t.entries[i].Err = err
			break
		}
	}
	t.render()
}

// Entries returns the exchanges so far.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Update scrolls the viewport.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// Content returns the full rendered transcript.
func (t *Transcript) Content() string {
	return t.content()
}

func (t *Transcript) render() {
	t.viewport.SetContent(t.content())
	t.viewport.GotoBottom()
}

func (t *Transcript) content() string {
	width := max(t.viewport.Width, 20)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	if t.intro != "" {
		b.WriteString(wrap.Render(t.styles.Muted.Render(t.intro)))
		b.WriteString("\n")
	}
	for i, e := range t.entries {
		if i > 0 || t.intro != "" {
			b.WriteString("\n")
		}
		b.WriteString(wrap.Render(t.styles.Question.Render("› " + e.Question)))
		b.WriteString("\n")
		b.WriteString(t.renderReply(e, width))
	}
	return b.String()
}

func (t *Transcript) renderReply(e Entry, width int) string {
	wrap := lipgloss.NewStyle().Width(width)

	switch {
	case e.Err != nil:
		return wrap.Render(t.styles.Error.Render("Error: "+e.Err.Error())) + "\n"
	case e.Answer == nil:
		return t.styles.Muted.Render("Thinking...") + "\n"
	}

	a := e.Answer
	band := domain.BandFor(a.Confidence)

	var b strings.Builder
	b.WriteString(wrap.Render(t.styles.Answer.Render(a.Answer)))
	b.WriteString("\n")
	b.WriteString(t.styles.Band(band).Render(
		fmt.Sprintf("%s %s (confidence %.0f%%)", band.Badge(), a.GuardrailStatus.Label(), a.Confidence*100)))
	b.WriteString("\n")

	srcWrap := lipgloss.NewStyle().Width(max(width-2, 10))
	for i, s := range a.Sources {
		line := fmt.Sprintf("[%d] (%.3f) %s", i+1, s.SimilarityScore, shorten(s.Text))
		b.WriteString(t.styles.Source.Render(srcWrap.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func shorten(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	r := []rune(flat)
	if len(r) <= maxSourceRunes {
		return flat
	}
	return string(r[:maxSourceRunes-1]) + "…"
}
