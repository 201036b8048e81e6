package dto

import "finpulse/internal/models"

type DocumentResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	FileName      string `json:"file_name"`
	PageCount     int    `json:"page_count"`
	FallbackPages int    `json:"fallback_pages"`
	CreatedAt     string `json:"created_at"`
}

type ProcessDocumentResponse struct {
	DocumentID string                  `json:"document_id"`
	Record     *models.StatementRecord `json:"record"`
}

type ParseStatementRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type AnalyzeStatementResponse struct {
	Record *models.StatementRecord `json:"record"`
	Report *models.AnalysisReport  `json:"report"`
}
