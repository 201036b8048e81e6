package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"finpulse/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const statementSystemPrompt = `You are an expert financial data parser. Your job is to extract structured data from raw bank statement text.

Output MUST be a valid JSON object with the following schema:
{
  "document_metadata": {
    "type": "bank_statement",
    "institution": "Name OR Unknown",
    "account_holder": "Name OR Unknown",
    "period_end": "YYYY-MM-DD",
    "currency": "USD"
  },
  "summary": {
    "opening_balance": 0.00,
    "closing_balance": 0.00,
    "total_deposits": 0.00,
    "total_withdrawals": 0.00
  },
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": "Cleaned Description (remove IDs/codes)",
      "category_hint": "Category/Subcategory",
      "type": "debit/credit",
      "amount": 0.00,
      "is_recurring": boolean
    }
  ]
}

Rules:
1. Standardize dates to YYYY-MM-DD. Infer year from context if missing.
2. Clean descriptions (e.g. "WAL-MART #3492" -> "Wal-Mart").
3. Withdrawals are DEBITS (positive amount in JSON, logic handled by type).
4. Return ONLY the JSON object. No markdown formatting.`

// statementSchema is the wire contract of StatementRecord. Optional numeric
// fields are allowed to be absent (they default to 0.00 on parse); extraction
// must never fail because the model omitted an optional field.
const statementSchema = `{
  "type": "object",
  "required": ["document_metadata", "summary", "transactions"],
  "properties": {
    "document_metadata": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"type": "string"},
        "institution": {"type": "string"},
        "account_holder": {"type": "string"},
        "period_end": {"type": "string"},
        "currency": {"type": "string"}
      }
    },
    "summary": {
      "type": "object",
      "properties": {
        "opening_balance": {"type": "number"},
        "closing_balance": {"type": "number"},
        "total_deposits": {"type": "number"},
        "total_withdrawals": {"type": "number"}
      }
    },
    "transactions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["date", "description", "type", "amount"],
        "properties": {
          "date": {"type": "string"},
          "description": {"type": "string"},
          "category_hint": {"type": "string"},
          "type": {"enum": ["debit", "credit"]},
          "amount": {"type": "number", "minimum": 0},
          "is_recurring": {"type": "boolean"}
        }
      }
    }
  }
}`

const maxSnippetLength = 200

// ExtractionError reports a schema/parse failure: the model response was not
// a valid statement record. It carries a bounded snippet of the input text
// for diagnosis. A partial best-guess record is never produced instead.
type ExtractionError struct {
	Cause   error
	Snippet string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("statement extraction failed: %v (input snippet: %q)", e.Cause, e.Snippet)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// SchemaService converts free text into a StatementRecord with one
// schema-constrained generation call.
type SchemaService struct {
	vision          VisionCapability
	schema          *jsonschema.Schema
	providerTimeout time.Duration
	maxRetries      int
	logger          *zap.Logger
}

func NewSchemaService(vision VisionCapability, providerTimeout time.Duration, maxRetries int, logger *zap.Logger) (*SchemaService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("statement.json", strings.NewReader(statementSchema)); err != nil {
		return nil, fmt.Errorf("failed to add statement schema: %w", err)
	}
	schema, err := compiler.Compile("statement.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile statement schema: %w", err)
	}

	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &SchemaService{
		vision:          vision,
		schema:          schema,
		providerTimeout: providerTimeout,
		maxRetries:      maxRetries,
		logger:          logger,
	}, nil
}

// ExtractRecord runs the constrained generation call and validates the
// response. Transport failures are retried once; parse and schema failures
// are not retried and surface as *ExtractionError.
func (s *SchemaService) ExtractRecord(ctx context.Context, text string) (*models.StatementRecord, error) {
	raw, err := s.generateWithRetry(ctx, "Extract data from this text:\n\n"+text)
	if err != nil {
		return nil, fmt.Errorf("statement extraction call failed: %w", err)
	}

	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ExtractionError{
			Cause:   fmt.Errorf("response is not valid JSON: %w", err),
			Snippet: snippet(text),
		}
	}
	if err := s.schema.Validate(payload); err != nil {
		return nil, &ExtractionError{
			Cause:   fmt.Errorf("response violates statement schema: %w", err),
			Snippet: snippet(text),
		}
	}

	var record models.StatementRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, &ExtractionError{
			Cause:   fmt.Errorf("failed to decode statement record: %w", err),
			Snippet: snippet(text),
		}
	}

	s.logger.Info("Statement record extracted",
		zap.String("institution", record.Metadata.Institution),
		zap.Int("transactions", len(record.Transactions)),
	)
	return &record, nil
}

func (s *SchemaService) generateWithRetry(ctx context.Context, userText string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
		raw, err := s.vision.GenerateJSON(callCtx, statementSystemPrompt, userText)
		cancel()
		if err == nil {
			return raw, nil
		}

		lastErr = err
		if attempt < s.maxRetries {
			s.logger.Warn("Statement extraction call failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
		}
	}
	return "", lastErr
}

func snippet(text string) string {
	if len(text) > maxSnippetLength {
		return text[:maxSnippetLength]
	}
	return text
}
