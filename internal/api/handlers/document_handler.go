package handlers

import (
	"errors"
	"io"

	"finpulse/internal/dto"
	"finpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	pipeline *service.PipelineService
	logger   *zap.Logger
}

func NewDocumentHandler(pipeline *service.PipelineService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	doc, err := h.pipeline.UploadDocument(c.Context(), userID, file.Filename, data)
	if err != nil {
		h.logger.Error("Failed to upload document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.DocumentResponse{
		ID:        doc.ID.String(),
		UserID:    doc.UserID,
		FileName:  doc.FileName,
		CreatedAt: doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *DocumentHandler) ProcessDocument(c *fiber.Ctx) error {
	documentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document ID",
		})
	}

	record, err := h.pipeline.ProcessStoredDocument(c.Context(), documentID)
	if err != nil {
		var extractionErr *service.ExtractionError
		if errors.As(err, &extractionErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Document could not be parsed into a statement",
				"details": extractionErr.Cause.Error(),
				"snippet": extractionErr.Snippet,
			})
		}
		h.logger.Error("Failed to process document", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process document",
		})
	}

	return c.JSON(dto.ProcessDocumentResponse{
		DocumentID: documentID.String(),
		Record:     record,
	})
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id is required",
		})
	}

	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	docs, err := h.pipeline.ListDocuments(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list documents", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list documents",
		})
	}

	responses := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, dto.DocumentResponse{
			ID:            doc.ID.String(),
			UserID:        doc.UserID,
			FileName:      doc.FileName,
			PageCount:     doc.PageCount,
			FallbackPages: doc.FallbackPages,
			CreatedAt:     doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return c.JSON(responses)
}

func (h *DocumentHandler) ParseStatement(c *fiber.Ctx) error {
	var req dto.ParseStatementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserID == "" || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and text are required",
		})
	}

	record, err := h.pipeline.ParseStatement(c.Context(), req.UserID, req.Text)
	if err != nil {
		var extractionErr *service.ExtractionError
		if errors.As(err, &extractionErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Text could not be parsed into a statement",
				"details": extractionErr.Cause.Error(),
				"snippet": extractionErr.Snippet,
			})
		}
		h.logger.Error("Failed to parse statement", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to parse statement",
		})
	}

	return c.JSON(record)
}

func (h *DocumentHandler) AnalyzeStatement(c *fiber.Ctx) error {
	var req dto.ParseStatementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.UserID == "" || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and text are required",
		})
	}

	record, report, err := h.pipeline.AnalyzeStatementText(c.Context(), req.UserID, req.Text)
	if err != nil {
		var extractionErr *service.ExtractionError
		if errors.As(err, &extractionErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Text could not be parsed into a statement",
				"details": extractionErr.Cause.Error(),
				"snippet": extractionErr.Snippet,
			})
		}
		h.logger.Error("Failed to analyze statement", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze statement",
		})
	}

	return c.JSON(dto.AnalyzeStatementResponse{
		Record: record,
		Report: report,
	})
}
