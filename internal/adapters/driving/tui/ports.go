// Package tui provides the interactive chat interface for docintel.
// It is a driving adapter over the ask and document ports.
package tui

import (
	"github.com/custodia-labs/docintel/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Ask answers questions about the open document.
	Ask driving.AskService

	// Document provides suggested questions. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	return nil
}
