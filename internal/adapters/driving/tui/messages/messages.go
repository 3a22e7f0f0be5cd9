// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/docintel/internal/core/domain"
)

// AnswerReceived carries the result of a question back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// SuggestionsLoaded carries suggested questions for the open document.
type SuggestionsLoaded struct {
	Questions []string
	Err       error
}
