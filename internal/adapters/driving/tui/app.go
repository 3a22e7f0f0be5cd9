package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docintel/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// Rows used by the header, input and status bar.
const chromeHeight = 6

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	doc    *domain.Document
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusBar  *status.Bar

	// suggestions are cycled into the input with Tab.
	suggestions []string
	nextSuggest int

	// asking is true while a question is in flight; Enter is ignored.
	asking bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat session for doc.
func NewApp(ports *Ports, doc *domain.Document) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingDocument)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	tr := transcript.New(s)
	tr.SetIntro(fmt.Sprintf("Ask questions about %s. Answers use only this document.", doc.Filename))

	bar := status.NewBar(s, km)
	bar.SetDocument(doc.Filename)

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		doc:        doc,
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: tr,
		statusBar:  bar,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.input.Init(),
		tea.SetWindowTitle("docintel - " + a.doc.Filename),
	}
	if a.ports.Document != nil {
		cmds = append(cmds, a.loadSuggestions())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.asking = false
		a.transcript.Resolve(msg.Question, msg.Answer, msg.Err)
		if msg.Err != nil {
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
		} else {
			a.statusBar.SetAnswer(msg.Answer)
		}
		return a, nil

	case messages.SuggestionsLoaded:
		if msg.Err == nil {
			a.suggestions = msg.Questions
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.Ask):
		question := a.input.Question()
		if question == "" || a.asking {
			return a, nil
		}
		a.asking = true
		a.input.Reset()
		a.transcript.Ask(question)
		a.statusBar.SetState(status.StateThinking)
		return a, a.ask(question)

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Suggest):
		if len(a.suggestions) > 0 {
			a.input.SetValue(a.suggestions[a.nextSuggest%len(a.suggestions)])
			a.nextSuggest++
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask returns a command that asks the question in the background.
func (a *App) ask(question string) tea.Cmd {
	ctx, svc, docID := a.ctx, a.ports.Ask, a.doc.ID
	return func() tea.Msg {
		answer, err := svc.Ask(ctx, docID, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (a *App) loadSuggestions() tea.Cmd {
	ctx, svc, docID := a.ctx, a.ports.Document, a.doc.ID
	return func() tea.Msg {
		qs, err := svc.SuggestQuestions(ctx, docID)
		return messages.SuggestionsLoaded{Questions: qs, Err: err}
	}
}

func (a *App) setSize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.transcript.SetSize(width, height-chromeHeight)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := a.styles.Title.Render("docintel") + a.styles.Muted.Render("  "+a.doc.Filename+"  "+a.doc.ID)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		a.transcript.View(),
		a.input.View(),
		a.statusBar.View(),
	)
}

// Asking reports whether a question is in flight.
func (a *App) Asking() bool {
	return a.asking
}

// Transcript returns the chat history.
func (a *App) Transcript() []transcript.Entry {
	return a.transcript.Entries()
}
