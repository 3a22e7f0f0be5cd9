// Command docintel answers questions about logistics documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/docintel/internal/adapters/driven/ai"
	"github.com/custodia-labs/docintel/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docintel/internal/adapters/driven/crypto"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docintel/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docintel/internal/adapters/driven/tokenizer"
	"github.com/custodia-labs/docintel/internal/adapters/driving/cli"
	"github.com/custodia-labs/docintel/internal/core/domain"
	"github.com/custodia-labs/docintel/internal/core/ports/driven"
	"github.com/custodia-labs/docintel/internal/core/services"
	"github.com/custodia-labs/docintel/internal/logger"
	"github.com/custodia-labs/docintel/internal/normalisers"
	"github.com/custodia-labs/docintel/internal/postprocessors"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	configDir, err := file.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: locating home directory: %v\n", err)
		return err
	}
	if _, err := file.LoadDotEnv(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading .env: %v\n", err)
		return err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(func(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
		return bootstrap(ctx, configDir, settingsService, opts)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

// bootstrap builds the document, ask and extraction services from the
// resolved settings. The returned cleanup closes stores and providers.
func bootstrap(
	ctx context.Context,
	configDir string,
	settingsService *services.SettingsService,
	opts cli.Options,
) (*cli.Services, func(), error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup()
		return nil, nil, err
	}

	cipher, err := crypto.New(crypto.Config{
		Key:       settings.Crypto.Key,
		Algorithm: settings.Crypto.Algorithm,
	})
	if err != nil {
		return fail(err)
	}

	docStore, catalog, closeStores, err := openStores(configDir, settings, opts.Ephemeral)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeStores)

	logger.Section("Providers")
	providers := ai.Init(ctx, settings)
	closers = append(closers, providers.Close)
	for _, w := range providers.Warnings {
		logger.Warn("%s", w)
	}

	guard := ai.GuardConfigFrom(settings.Providers)
	embedder := ai.GuardEmbedding(providers.EmbeddingService, guard)
	llm := ai.GuardLLM(providers.LLMService, guard)

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fail(fmt.Errorf("loading prompts: %w", err))
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Chunking)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err))
	}

	documents := services.NewDocumentService(
		docStore, catalog, normalisers.NewDefaultRegistry(), pipeline, embedder, cipher,
		services.DocumentConfig{
			ProviderTimeout:  settings.Providers.Timeout,
			SuggestQuestions: settings.RAG.SuggestQuestions,
		},
	)
	documents.SetPromptStore(prompts)
	if llm != nil {
		documents.SetLLMService(llm)
	}

	return &cli.Services{
		Document:   documents,
		Ask:        services.NewAskService(docStore, embedder, llm, prompts, services.AskConfigFrom(settings)),
		Extraction: services.NewExtractionService(docStore, llm, prompts, tokenizer.New(), services.ExtractionConfigFrom(settings)),
	}, cleanup, nil
}

// openStores returns the per-document store and the catalog. Ephemeral runs
// keep everything in memory.
func openStores(
	configDir string, settings *domain.AppSettings, ephemeral bool,
) (driven.DocumentStore, driven.DocumentCatalog, func(), error) {
	if ephemeral {
		logger.Notice("Ephemeral mode: documents are kept in memory only")
		return memory.NewDocumentStore(), memory.NewCatalog(), func() {}, nil
	}

	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}
	logger.Debug("Data directory: %s", dataDir)

	catalog, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	docStore, err := filesystem.New(dataDir, filesystem.WithCatalog(catalog))
	if err != nil {
		catalog.Close()
		return nil, nil, nil, fmt.Errorf("opening document store: %w", err)
	}
	return docStore, catalog, func() { catalog.Close() }, nil
}
