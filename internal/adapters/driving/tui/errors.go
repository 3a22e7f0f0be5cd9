package tui

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("tui: ask service is required")

// ErrMissingDocument is returned when no document is given to chat about.
var ErrMissingDocument = errors.New("tui: document is required")
