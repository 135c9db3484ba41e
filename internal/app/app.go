package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/handlers"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/services/analysis"
	"github.com/ternarybob/bravix/internal/services/extraction"
	"github.com/ternarybob/bravix/internal/services/llm"
	"github.com/ternarybob/bravix/internal/services/narrative"
	"github.com/ternarybob/bravix/internal/services/pdf"
	"github.com/ternarybob/bravix/internal/services/report"
	"github.com/ternarybob/bravix/internal/services/scheduler"
	"github.com/ternarybob/bravix/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Services
	LLM               *llm.ProviderFactory
	PDFService        *pdf.Service
	PDFExtractor      *pdf.Extractor
	ExtractionService *extraction.Service
	NarrativeService  *narrative.Service
	AnalysisService   *analysis.Service
	ReportService     *report.Service
	RetentionService  *scheduler.RetentionService

	// HTTP handlers
	SystemHandler   *handlers.SystemHandler
	AnalysisHandler *handlers.AnalysisHandler
	ReportHandler   *handlers.ReportHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Bool("narrative_enabled", app.NarrativeService.Enabled()).
		Str("narrative_models", fmt.Sprintf("%v", app.NarrativeService.Models())).
		Bool("ai_fallback", cfg.Extraction.AIFallback).
		Int("retention_days", cfg.Storage.Badger.RetentionDays).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order:
// LLM providers, then narrative and extraction (which use them), then
// analysis and report rendering on top of the store.
func (a *App) initServices() error {
	cfg := a.Config
	store := a.StorageManager.ReportStore()

	a.LLM = llm.NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, a.Logger)

	a.PDFService = pdf.NewService(a.Logger)
	a.PDFExtractor = pdf.NewExtractor(a.Logger)

	labels := extraction.DefaultLabels()
	if cfg.Extraction.LabelsFile != "" {
		loaded, err := extraction.LoadLabels(cfg.Extraction.LabelsFile)
		if err != nil {
			return fmt.Errorf("failed to load labels: %w", err)
		}
		labels = loaded
		a.Logger.Info().
			Str("file", cfg.Extraction.LabelsFile).
			Int("labels", labels.Len()).
			Msg("Loaded label dictionary")
	}

	models := cfg.Narrative.Models
	if len(models) == 0 {
		models = a.LLM.DefaultModels()
	}
	if len(models) == 0 {
		a.Logger.Warn().Msg("No LLM API key configured, narrative and AI extraction fallback are unavailable")
	}

	a.NarrativeService = narrative.NewService(a.LLM, models, &cfg.Narrative, a.Logger)

	aiModel := ""
	if len(models) > 0 {
		aiModel = models[0]
	}
	a.ExtractionService = extraction.NewService(a.PDFExtractor, labels, a.LLM, aiModel, &cfg.Extraction, a.Logger)

	a.AnalysisService = analysis.NewService(store, a.NarrativeService, cfg.Extraction.TextExcerptLimit, a.Logger)
	a.ReportService = report.NewService(store, a.PDFService, a.Logger)
	a.RetentionService = scheduler.NewRetentionService(store, &cfg.Storage.Badger, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	store := a.StorageManager.ReportStore()

	a.SystemHandler = handlers.NewSystemHandler(a.Logger)
	a.AnalysisHandler = handlers.NewAnalysisHandler(
		a.ExtractionService,
		a.AnalysisService,
		a.Config.MaxUploadBytes(),
		a.Logger,
	)
	a.ReportHandler = handlers.NewReportHandler(store, a.ReportService, a.Logger)
}

// Start starts background services.
func (a *App) Start() error {
	if err := a.RetentionService.Start(); err != nil {
		return fmt.Errorf("failed to start retention service: %w", err)
	}
	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	if a.RetentionService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.RetentionService.Stop(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop retention service")
		}
		cancel()
	}

	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM providers")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
