package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finpulse/internal/api"
	"finpulse/internal/api/handlers"
	"finpulse/internal/repository"
	"finpulse/internal/service"
	"finpulse/pkg/config"
	"finpulse/pkg/logger"
	"finpulse/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinPulse service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	docRepo := repository.NewDocumentRepository(db, appLogger)
	reportRepo := repository.NewReportRepository(db, appLogger)
	store := repository.NewFSStore(cfg.Pipeline.DataDir, appLogger)

	// Initialize services
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ocr := service.NewTesseractOCR(cfg.OCR.Languages, appLogger)
	extraction := service.NewExtractionService(ocr, llmService, cfg.Pipeline.ProviderTimeout, cfg.Pipeline.MaxRetries, appLogger)
	structurer := service.NewStructurerService(service.FitzOpener{}, extraction, cfg.Pipeline.PageWorkers, appLogger)

	schemaService, err := service.NewSchemaService(llmService, cfg.Pipeline.ProviderTimeout, cfg.Pipeline.MaxRetries, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize schema service", zap.Error(err))
	}

	generator := service.NewGeneratorService(nil, appLogger)
	analyzer := service.NewAnalyzerService()

	pipeline := service.NewPipelineService(
		structurer, schemaService, generator, analyzer,
		store, docRepo, reportRepo, cfg.Pipeline.UploadDir, appLogger,
	)

	// Initialize handlers
	docHandler := handlers.NewDocumentHandler(pipeline, appLogger)
	analysisHandler := handlers.NewAnalysisHandler(pipeline, appLogger)

	// Setup router
	app := api.SetupRouter(docHandler, analysisHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
