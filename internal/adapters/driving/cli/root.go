// Package cli provides the docintel command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docintel/internal/core/ports/driving"
	"github.com/custodia-labs/docintel/internal/logger"
)

// version is set at build time.
var version = "dev"

// Driving ports used by commands. They are set by SetServices or built
// lazily through the bootstrap on first use.
var (
	documentService   driving.DocumentService
	askService        driving.AskService
	extractionService driving.ExtractionService
	settingsService   driving.SettingsService
)

// Global flags.
var (
	verbose    bool
	jsonOutput bool
	ephemeral  bool
)

// Options describe how services should be built for a command.
type Options struct {
	// Ephemeral keeps documents in memory for the lifetime of the process.
	Ephemeral bool
}

// Services are the document ports a command may need.
type Services struct {
	Document   driving.DocumentService
	Ask        driving.AskService
	Extraction driving.ExtractionService
}

// Bootstrap builds services. The returned cleanup runs when Execute returns.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap Bootstrap
	cleanups  []func()
)

var rootCmd = &cobra.Command{
	Use:   "docintel",
	Short: "Ask grounded questions about logistics documents",
	Long: `docintel ingests logistics documents (rate confirmations, bills of lading,
carrier agreements), answers questions about them with retrieval-grounded
confidence scoring, and extracts structured shipment records.

Answers carry a guardrail status: Grounded, Low Confidence, No Context or
Refused. Questions whose best matching passage is too weak are refused
without calling the language model.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep documents in memory for this run only")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the function used to build document services on demand.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects document services directly.
func SetServices(s *Services) {
	if s == nil {
		documentService, askService, extractionService = nil, nil, nil
		return
	}
	documentService = s.Document
	askService = s.Ask
	extractionService = s.Extraction
}

// loadServices makes sure document services exist, bootstrapping them if needed.
func loadServices(cmd *cobra.Command) error {
	if documentService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("document service not configured")
	}

	svcs, cleanup, err := bootstrap(cmd.Context(), Options{Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	if cleanup != nil {
		cleanups = append(cleanups, cleanup)
	}
	SetServices(svcs)
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	defer runCleanups()
	return rootCmd.ExecuteContext(ctx)
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}
