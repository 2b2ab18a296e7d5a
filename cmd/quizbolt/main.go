// Package main is the quizbolt binary.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quizbolt/quizbolt/internal/adapters/driven/ai"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/config/file"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/fetch"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/metrics/prometheus"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/storage/memory"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/storage/postgres"
	"github.com/quizbolt/quizbolt/internal/adapters/driven/storage/sqlite"
	"github.com/quizbolt/quizbolt/internal/adapters/driving/cli"
	"github.com/quizbolt/quizbolt/internal/core/domain"
	"github.com/quizbolt/quizbolt/internal/core/ports/driven"
	"github.com/quizbolt/quizbolt/internal/core/services"
	"github.com/quizbolt/quizbolt/internal/logger"
	"github.com/quizbolt/quizbolt/internal/normalisers"
	"github.com/quizbolt/quizbolt/internal/postprocessors"
)

// version is set at build time via ldflags.
var version = "dev"

// store is the persistence surface every backend provides.
type store interface {
	driven.DocumentStore
	driven.ChunkStore
	driven.ArtifactStore
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read settings: %v\n", err)
		return err
	}
	logger.SetFormat(settings.LogFormat)

	cli.SetVersion(version)
	svc := &cli.Services{Settings: settingsService}

	st, closeStore, err := openStore(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer closeStore()

	library := services.NewLibraryService(st, st, st)
	svc.Library = library
	svc.Notes = library

	metrics := prometheus.NewMetrics()
	svc.Metrics = metrics.Handler()

	// Without working AI providers, only library and settings commands run.
	aiServices, err := ai.Init(ctx, settings)
	if err != nil {
		logger.Warn("AI services unavailable: %v", err)
		logger.Warn("Run 'quizbolt settings wizard' to configure providers.")
	} else {
		defer aiServices.Close()
		if err := wireAI(svc, settings, aiServices, st, metrics); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
	}

	cli.SetServices(svc)
	return cli.Execute(ctx)
}

func wireAI(svc *cli.Services, settings *domain.AppSettings, aiServices *ai.InitResult,
	st store, metrics driven.Metrics) error {
	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("failed to open prompt store: %w", err)
	}
	pipeline, err := postprocessors.NewDefaultPipeline(settings.RAG)
	if err != nil {
		return fmt.Errorf("invalid RAG settings: %w", err)
	}

	svc.Ingest = services.NewIngestService(
		normalisers.NewDefaultRegistry(),
		pipeline,
		fetch.New(),
		aiServices.EmbeddingService,
		st, st,
		metrics,
		settings.RAG.EmbedBatchSize,
	)
	svc.RAG = services.NewRAGService(
		aiServices.EmbeddingService,
		st,
		aiServices.LLMService,
		promptStore,
		metrics,
		settings.RAG,
	)
	svc.Study = services.NewStudyService(
		st, st, st,
		aiServices.LLMService,
		promptStore,
		metrics,
		settings.LLM.EffectiveGenerationModel(),
	)
	return nil
}

// openStore opens the configured backend and returns a function closing it.
func openStore(ctx context.Context, settings *domain.AppSettings) (store, func(), error) {
	switch settings.Store.Backend {
	case domain.StoreBackendPostgres:
		pg, err := postgres.New(ctx, settings.Store.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return pg, closer(pg), nil
	case domain.StoreBackendMemory:
		return memory.NewStore(), func() {}, nil
	case domain.StoreBackendSQLite, "":
		sq, err := sqlite.NewStore(settings.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return sq, closer(sq), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrConfiguration, settings.Store.Backend)
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("closing store: %v", err)
		}
	}
}
