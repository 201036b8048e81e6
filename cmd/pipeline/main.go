package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"finpulse/internal/models"
	"finpulse/internal/repository"
	"finpulse/internal/service"
	"finpulse/pkg/config"
	"finpulse/pkg/logger"

	"go.uber.org/zap"
)

// Standalone pipeline runner. Without arguments it generates and analyzes
// one synthetic user per scenario, needing neither the HTTP server, the
// database, nor a model provider. With a file argument it runs the document
// path instead: extract, parse, analyze.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if len(os.Args) > 1 {
		runDocument(cfg, appLogger, os.Args[1])
		return
	}
	runScenarios(cfg, appLogger)
}

func runScenarios(cfg *config.Config, appLogger *zap.Logger) {
	store := repository.NewFSStore(cfg.Pipeline.DataDir, appLogger)
	generator := service.NewGeneratorService(nil, appLogger)
	analyzer := service.NewAnalyzerService()

	pipeline := service.NewPipelineService(
		nil, nil, generator, analyzer,
		store, nil, nil, cfg.Pipeline.UploadDir, appLogger,
	)

	ctx := context.Background()
	for _, scenario := range []models.Scenario{models.ScenarioCritical, models.ScenarioStable} {
		userID := fmt.Sprintf("AGT-%04d", rand.Intn(10000))

		report, err := pipeline.RunScenario(ctx, userID, scenario, 50)
		if err != nil {
			appLogger.Fatal("Pipeline run failed",
				zap.String("scenario", string(scenario)),
				zap.Error(err),
			)
		}

		appLogger.Info("Pipeline run complete",
			zap.String("user_id", userID),
			zap.String("scenario", string(scenario)),
			zap.Int("health_score", report.Scores.FinancialHealthScore),
			zap.String("artifacts", filepath.Join(cfg.Pipeline.DataDir, userID)),
		)
	}
}

func runDocument(cfg *config.Config, appLogger *zap.Logger, sourcePath string) {
	ctx := context.Background()

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

	store := repository.NewFSStore(cfg.Pipeline.DataDir, appLogger)
	pipeline := service.NewPipelineService(
		structurer, schemaService, nil, service.NewAnalyzerService(),
		store, nil, nil, cfg.Pipeline.UploadDir, appLogger,
	)

	base := filepath.Base(sourcePath)
	userID := "DOC-" + strings.TrimSuffix(base, filepath.Ext(base))

	record, err := pipeline.ProcessDocument(ctx, userID, sourcePath)
	if err != nil {
		appLogger.Fatal("Document processing failed", zap.String("source", sourcePath), zap.Error(err))
	}

	report, err := pipeline.AnalyzeStatement(ctx, userID, record)
	if err != nil {
		appLogger.Fatal("Statement analysis failed", zap.Error(err))
	}

	appLogger.Info("Document pipeline complete",
		zap.String("user_id", userID),
		zap.String("institution", record.Metadata.Institution),
		zap.Int("transactions", len(record.Transactions)),
		zap.Int("health_score", report.Scores.FinancialHealthScore),
		zap.String("artifacts", filepath.Join(cfg.Pipeline.DataDir, userID)),
	)
}
