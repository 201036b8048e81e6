package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finpulse/internal/models"
	"finpulse/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	artifactProfile      = "raw_profile.json"
	artifactTransactions = "raw_transactions.json"
	artifactSummary      = "analysis_summary.json"
	artifactStatement    = "statement_record.json"
)

// PipelineService wires the stages together: generation or document
// extraction feeding the analyzer, with every intermediate saved as a
// per-user artifact. Database snapshots are best effort; the pipeline runs
// without them when the repositories are absent.
type PipelineService struct {
	structurer *StructurerService
	schema     *SchemaService
	generator  *GeneratorService
	analyzer   *AnalyzerService
	store      repository.Store
	documents  *repository.DocumentRepository
	reports    *repository.ReportRepository
	uploadDir  string
	logger     *zap.Logger
}

func NewPipelineService(
	structurer *StructurerService,
	schema *SchemaService,
	generator *GeneratorService,
	analyzer *AnalyzerService,
	store repository.Store,
	documents *repository.DocumentRepository,
	reports *repository.ReportRepository,
	uploadDir string,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		structurer: structurer,
		schema:     schema,
		generator:  generator,
		analyzer:   analyzer,
		store:      store,
		documents:  documents,
		reports:    reports,
		uploadDir:  uploadDir,
		logger:     logger,
	}
}

// RunScenario generates a synthetic profile and ledger for the scenario,
// analyzes them, and saves all three artifacts under the user's directory.
func (p *PipelineService) RunScenario(ctx context.Context, userID string, scenario models.Scenario, count int) (*models.AnalysisReport, error) {
	p.logger.Info("Running scenario pipeline",
		zap.String("user_id", userID),
		zap.String("scenario", string(scenario)),
		zap.Int("count", count),
	)

	profile := p.generator.GenerateProfile(userID, scenario)
	transactions := p.generator.GenerateTransactions(count, scenario)

	if err := p.saveArtifact(ctx, userID, artifactProfile, profile); err != nil {
		return nil, err
	}
	if err := p.saveArtifact(ctx, userID, artifactTransactions, models.TransactionBatch{Transactions: transactions}); err != nil {
		return nil, err
	}

	report := p.analyzer.Analyze(profile, transactions)
	if err := p.saveArtifact(ctx, userID, artifactSummary, report); err != nil {
		return nil, err
	}

	p.snapshotReport(ctx, userID, &report)
	return &report, nil
}

// UploadDocument stores the raw file under the upload directory and records
// it for later processing.
func (p *PipelineService) UploadDocument(ctx context.Context, userID, fileName string, data []byte) (*models.Document, error) {
	if err := os.MkdirAll(p.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New()
	sourcePath := filepath.Join(p.uploadDir, id.String()+filepath.Ext(fileName))
	if err := os.WriteFile(sourcePath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:         id,
		UserID:     userID,
		FileName:   fileName,
		SourcePath: sourcePath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.documents != nil {
		if err := p.documents.Create(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to record document: %w", err)
		}
	}

	p.logger.Info("Document uploaded",
		zap.String("document_id", id.String()),
		zap.String("file_name", fileName),
	)
	return doc, nil
}

// ProcessDocument runs extraction and schema parsing over a source file and
// saves the resulting statement record artifact.
func (p *PipelineService) ProcessDocument(ctx context.Context, userID, sourcePath string) (*models.StatementRecord, error) {
	structured, err := p.structurer.Structure(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	record, err := p.schema.ExtractRecord(ctx, structured.JoinedText())
	if err != nil {
		return nil, err
	}

	if err := p.saveArtifact(ctx, userID, artifactStatement, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ProcessStoredDocument looks up an uploaded document, processes it, and
// writes the extraction results back to its row.
func (p *PipelineService) ProcessStoredDocument(ctx context.Context, id uuid.UUID) (*models.StatementRecord, error) {
	if p.documents == nil {
		return nil, fmt.Errorf("document storage is not configured")
	}

	doc, err := p.documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	structured, err := p.structurer.Structure(ctx, doc.SourcePath)
	if err != nil {
		return nil, err
	}

	text := structured.JoinedText()
	if err := p.documents.UpdateExtraction(ctx, id, text, len(structured.Units), structured.FallbackCount()); err != nil {
		p.logger.Warn("Failed to persist extraction results", zap.String("document_id", id.String()), zap.Error(err))
	}

	record, err := p.schema.ExtractRecord(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := p.saveArtifact(ctx, doc.UserID, artifactStatement, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ParseStatement extracts a statement record from already-available text,
// bypassing the document layer.
func (p *PipelineService) ParseStatement(ctx context.Context, userID, text string) (*models.StatementRecord, error) {
	record, err := p.schema.ExtractRecord(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := p.saveArtifact(ctx, userID, artifactStatement, record); err != nil {
		return nil, err
	}
	return record, nil
}

// AnalyzeStatement runs the analyzer over a parsed statement. The profile is
// derived from the statement summary: deposits become inflow, the closing
// balance becomes the current balance.
func (p *PipelineService) AnalyzeStatement(ctx context.Context, userID string, record *models.StatementRecord) (*models.AnalysisReport, error) {
	profile := models.Profile{
		UserID: userID,
		Name:   record.Metadata.AccountHolder,
		FinancialStatus: models.FinancialStatus{
			MonthlyInflow:  fmt.Sprintf("%.2f", record.Summary.TotalDeposits),
			CurrentBalance: fmt.Sprintf("%.2f", record.Summary.ClosingBalance),
		},
	}

	report := p.analyzer.Analyze(profile, record.LedgerTransactions())
	if err := p.saveArtifact(ctx, userID, artifactSummary, report); err != nil {
		return nil, err
	}

	p.snapshotReport(ctx, userID, &report)
	return &report, nil
}

// AnalyzeStatementText runs the full statement path over raw text: parse
// into a record, then analyze it. Both artifacts are saved.
func (p *PipelineService) AnalyzeStatementText(ctx context.Context, userID, text string) (*models.StatementRecord, *models.AnalysisReport, error) {
	record, err := p.ParseStatement(ctx, userID, text)
	if err != nil {
		return nil, nil, err
	}

	report, err := p.AnalyzeStatement(ctx, userID, record)
	if err != nil {
		return nil, nil, err
	}
	return record, report, nil
}

// ListDocuments returns the user's uploaded documents, newest first.
func (p *PipelineService) ListDocuments(ctx context.Context, userID string, limit, offset int) ([]*models.Document, error) {
	if p.documents == nil {
		return nil, fmt.Errorf("document storage is not configured")
	}
	return p.documents.ListByUserID(ctx, userID, limit, offset)
}

// LatestReport returns the last saved analysis for the user, reading the
// artifact store first and falling back to the database snapshot.
func (p *PipelineService) LatestReport(ctx context.Context, userID string) (*models.AnalysisReport, error) {
	data, err := p.store.Get(ctx, userID+"/"+artifactSummary)
	if err == nil {
		var report models.AnalysisReport
		if jsonErr := json.Unmarshal(data, &report); jsonErr == nil {
			return &report, nil
		}
	}

	if p.reports != nil {
		return p.reports.GetLatest(ctx, userID)
	}
	return nil, fmt.Errorf("no analysis found for user %s", userID)
}

func (p *PipelineService) saveArtifact(ctx context.Context, userID, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := p.store.Put(ctx, userID+"/"+name, data); err != nil {
		return err
	}
	return nil
}

func (p *PipelineService) snapshotReport(ctx context.Context, userID string, report *models.AnalysisReport) {
	if p.reports == nil {
		return
	}
	if err := p.reports.Create(ctx, userID, report); err != nil {
		p.logger.Warn("Failed to snapshot analysis report", zap.String("user_id", userID), zap.Error(err))
	}
}
