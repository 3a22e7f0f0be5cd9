// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the chat.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Ask sends the typed question.
	Ask key.Binding

	// ScrollUp scrolls the transcript up a page.
	ScrollUp key.Binding

	// ScrollDown scrolls the transcript down a page.
	ScrollDown key.Binding

	// Suggest fills the input with the next suggested question.
	Suggest key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Suggest: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "suggestion"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Suggest, k.ScrollUp, k.Quit}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
