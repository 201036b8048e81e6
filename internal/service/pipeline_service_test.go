package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"finpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryStore struct {
	artifacts map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{artifacts: make(map[string][]byte)}
}

func (m *memoryStore) Put(ctx context.Context, key string, value []byte) error {
	m.artifacts[key] = value
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := m.artifacts[key]
	if !ok {
		return nil, fmt.Errorf("no artifact %s", key)
	}
	return data, nil
}

func newScenarioPipeline(store *memoryStore) *PipelineService {
	generator := NewGeneratorService(rand.New(rand.NewSource(7)), zap.NewNop())
	return NewPipelineService(nil, nil, generator, NewAnalyzerService(), store, nil, nil, "uploads", zap.NewNop())
}

func TestRunScenario_WritesAllArtifacts(t *testing.T) {
	store := newMemoryStore()
	pipeline := newScenarioPipeline(store)

	report, err := pipeline.RunScenario(context.Background(), "AGT-7777", models.ScenarioCritical, 40)
	require.NoError(t, err)
	require.NotNil(t, report)

	require.Contains(t, store.artifacts, "AGT-7777/raw_profile.json")
	require.Contains(t, store.artifacts, "AGT-7777/raw_transactions.json")
	require.Contains(t, store.artifacts, "AGT-7777/analysis_summary.json")

	var profile models.Profile
	require.NoError(t, json.Unmarshal(store.artifacts["AGT-7777/raw_profile.json"], &profile))
	assert.Equal(t, "AGT-7777", profile.UserID)
	assert.Equal(t, "Agent_7777", profile.Name)

	txs, err := models.DecodeTransactions(store.artifacts["AGT-7777/raw_transactions.json"])
	require.NoError(t, err)
	assert.Len(t, txs, 40)
}

func TestRunScenario_TransactionsArtifactIsWrapped(t *testing.T) {
	store := newMemoryStore()
	pipeline := newScenarioPipeline(store)

	_, err := pipeline.RunScenario(context.Background(), "AGT-0001", models.ScenarioStable, 5)
	require.NoError(t, err)

	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(store.artifacts["AGT-0001/raw_transactions.json"], &wrapper))
	require.Contains(t, wrapper, "transactions")
}

func TestRunScenario_ArtifactsAreIndented(t *testing.T) {
	store := newMemoryStore()
	pipeline := newScenarioPipeline(store)

	_, err := pipeline.RunScenario(context.Background(), "AGT-0002", models.ScenarioStable, 1)
	require.NoError(t, err)

	for key, data := range store.artifacts {
		assert.True(t, strings.Contains(string(data), "\n  "), "artifact %s should be pretty-printed", key)
	}
}

func TestRunScenario_SummaryMatchesAnalyzerOutput(t *testing.T) {
	store := newMemoryStore()
	pipeline := newScenarioPipeline(store)

	report, err := pipeline.RunScenario(context.Background(), "AGT-0003", models.ScenarioCritical, 20)
	require.NoError(t, err)

	var saved models.AnalysisReport
	require.NoError(t, json.Unmarshal(store.artifacts["AGT-0003/analysis_summary.json"], &saved))
	assert.Equal(t, report.Scores, saved.Scores)
	assert.Equal(t, models.AnalyzerVersion, saved.Meta.AnalyzerVersion)
}

func TestAnalyzeStatement_DerivesProfileFromSummary(t *testing.T) {
	store := newMemoryStore()
	pipeline := newScenarioPipeline(store)

	record := &models.StatementRecord{
		Metadata: models.StatementMetadata{
			Type:          "bank_statement",
			AccountHolder: "Jordan Reyes",
		},
		Summary: models.StatementSummary{
			ClosingBalance: 900.25,
			TotalDeposits:  3000.00,
		},
		Transactions: []models.StatementTransaction{
			{Date: "2024-03-02", Description: "Wal-Mart", CategoryHint: "Shopping", Type: models.TxTypeDebit, Amount: 45.10},
		},
	}

	report, err := pipeline.AnalyzeStatement(context.Background(), "u-42", record)
	require.NoError(t, err)

	// Closing balance 900.25 is under the low-balance floor: -40.
	assert.Equal(t, 60, report.Scores.FinancialHealthScore)
	require.Contains(t, store.artifacts, "u-42/analysis_summary.json")
}

func TestAnalyzeStatementText_ParsesAndAnalyzes(t *testing.T) {
	store := newMemoryStore()
	vision := &fakeVision{
		generateFn: func(ctx context.Context, systemPrompt, userText string) (string, error) {
			return validStatementJSON, nil
		},
	}
	schemaService, err := NewSchemaService(vision, time.Second, 0, zap.NewNop())
	require.NoError(t, err)

	pipeline := NewPipelineService(nil, schemaService, nil, NewAnalyzerService(), store, nil, nil, "uploads", zap.NewNop())

	record, report, err := pipeline.AnalyzeStatementText(context.Background(), "u-9", "statement text here")
	require.NoError(t, err)

	assert.Equal(t, "First National", record.Metadata.Institution)
	require.NotNil(t, report)
	// Closing balance 900.25 is under the low-balance floor: -40.
	assert.Equal(t, 60, report.Scores.FinancialHealthScore)

	require.Contains(t, store.artifacts, "u-9/statement_record.json")
	require.Contains(t, store.artifacts, "u-9/analysis_summary.json")
}

func TestAnalyzeStatementText_ParseFailureSavesNothing(t *testing.T) {
	store := newMemoryStore()
	vision := &fakeVision{
		generateFn: func(ctx context.Context, systemPrompt, userText string) (string, error) {
			return "not json", nil
		},
	}
	schemaService, err := NewSchemaService(vision, time.Second, 0, zap.NewNop())
	require.NoError(t, err)

	pipeline := NewPipelineService(nil, schemaService, nil, NewAnalyzerService(), store, nil, nil, "uploads", zap.NewNop())

	_, _, err = pipeline.AnalyzeStatementText(context.Background(), "u-10", "gibberish")
	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Empty(t, store.artifacts)
}

func TestListDocuments_RequiresDocumentStorage(t *testing.T) {
	pipeline := newScenarioPipeline(newMemoryStore())

	_, err := pipeline.ListDocuments(context.Background(), "u-1", 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestParseStatement_SavesRecordArtifact(t *testing.T) {
	store := newMemoryStore()
	vision := &fakeVision{
		generateFn: func(ctx context.Context, systemPrompt, userText string) (string, error) {
			return validStatementJSON, nil
		},
	}
	schemaService, err := NewSchemaService(vision, time.Second, 0, zap.NewNop())
	require.NoError(t, err)

	pipeline := NewPipelineService(nil, schemaService, nil, NewAnalyzerService(), store, nil, nil, "uploads", zap.NewNop())

	record, err := pipeline.ParseStatement(context.Background(), "u-7", "statement text here")
	require.NoError(t, err)
	assert.Equal(t, "First National", record.Metadata.Institution)
	require.Contains(t, store.artifacts, "u-7/statement_record.json")
}
